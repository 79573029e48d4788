// Package cognito implements auth.UserService on an AWS Cognito user pool app client.
package cognito

import (
	"context"
	"errors"
	"fmt"

	"conduitauth/internal/auth"
	"github.com/aws/aws-sdk-go-v2/aws"
	cognito "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/golang-jwt/jwt/v5"
)

// API is the subset of the Cognito client used here.
type API interface {
	SignUp(ctx context.Context, params *cognito.SignUpInput, optFns ...func(*cognito.Options)) (*cognito.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognito.InitiateAuthInput, optFns ...func(*cognito.Options)) (*cognito.InitiateAuthOutput, error)
}

type Service struct {
	api      API
	clientId string
}

func New(api API, clientId string) *Service {
	return &Service{api: api, clientId: clientId}
}

func (s *Service) Login(ctx context.Context, credentials auth.LoginCredentials) (auth.User, error) {
	out, err := s.api.InitiateAuth(ctx, &cognito.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.clientId),
		AuthParameters: map[string]string{
			"USERNAME": credentials.Email,
			"PASSWORD": credentials.Password,
		},
	})
	if err != nil {
		return auth.User{}, translate(err)
	}

	if out.AuthenticationResult == nil {
		fiberlog.Error("cognito: unsupported auth challenge: ", out.ChallengeName)
		return auth.User{}, auth.NewErrors("email or password", "requires a challenge that is not supported")
	}

	user := auth.User{
		Email: credentials.Email,
		Token: aws.ToString(out.AuthenticationResult.AccessToken),
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(aws.ToString(out.AuthenticationResult.IdToken), claims); err != nil {
		return auth.User{}, fmt.Errorf("cognito: parse id token: %w", err)
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if username, ok := claims["preferred_username"].(string); ok {
		user.Username = username
	}

	return user, nil
}

// Register signs the user up. Auto-confirmed users are signed in right away; others
// come back without a token until they confirm their email.
func (s *Service) Register(ctx context.Context, credentials auth.RegisterCredentials) (auth.User, error) {
	out, err := s.api.SignUp(ctx, &cognito.SignUpInput{
		ClientId: aws.String(s.clientId),
		Password: aws.String(credentials.Password),
		Username: aws.String(credentials.Email),
		UserAttributes: []types.AttributeType{
			{
				Name:  aws.String("email"),
				Value: aws.String(credentials.Email),
			},
			{
				Name:  aws.String("preferred_username"),
				Value: aws.String(credentials.Username),
			},
		},
	})
	if err != nil {
		return auth.User{}, translate(err)
	}

	if out.UserConfirmed {
		return s.Login(ctx, auth.LoginCredentials{Email: credentials.Email, Password: credentials.Password})
	}

	return auth.User{Email: credentials.Email, Username: credentials.Username}, nil
}

// translate turns the Cognito exceptions a user can act on into an error payload.
func translate(err error) error {
	var (
		notAuthorized *types.NotAuthorizedException
		notFound      *types.UserNotFoundException
		exists        *types.UsernameExistsException
		badPassword   *types.InvalidPasswordException
		notConfirmed  *types.UserNotConfirmedException
		badParameter  *types.InvalidParameterException
	)

	switch {
	case errors.As(err, &notAuthorized), errors.As(err, &notFound):
		return auth.NewErrors("email or password", "is invalid")
	case errors.As(err, &exists):
		return auth.NewErrors("email", "has already been taken")
	case errors.As(err, &badPassword):
		return auth.NewErrors("password", badPassword.ErrorMessage())
	case errors.As(err, &notConfirmed):
		return auth.NewErrors("email", "is not confirmed")
	case errors.As(err, &badParameter):
		return auth.NewErrors("input", badParameter.ErrorMessage())
	}

	return fmt.Errorf("cognito: %w", err)
}
