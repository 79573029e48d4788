package main

import (
	"testing"
	"time"

	"conduitauth/internal/config"
	"conduitauth/internal/constants"
	"conduitauth/views"
	"github.com/stretchr/testify/assert"
)

// closingStorage only records whether it was closed.
type closingStorage struct {
	closed bool
}

func (s *closingStorage) Get(string) ([]byte, error) { return nil, nil }

func (s *closingStorage) Set(string, []byte, time.Duration) error { return nil }

func (s *closingStorage) Delete(string) error { return nil }

func (s *closingStorage) Reset() error { return nil }

func (s *closingStorage) Close() error {
	s.closed = true
	return nil
}

func TestServeClosesSessionStorage(t *testing.T) {
	storage := &closingStorage{}
	cfg := config.New(config.Settings{Env: constants.EnvTest, Host: "localhost", Port: "not-a-port"}, nil, nil, views.FS)
	cfg.SessionStorage = storage

	err := serve(cfg)

	assert.Error(t, err)
	assert.True(t, storage.closed)
}
