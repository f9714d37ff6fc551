package authenticator_test

import (
	"testing"
	"time"

	"github.com/teampulse/backend/config"
	"github.com/teampulse/backend/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[string]("secret", config.TokenConfigs{Expiration: time.Minute})
	token, err := engine.Generate("sub", "abc")
	require.Nil(t, err)

	msg, err := engine.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "abc", msg)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[string]("secret", config.TokenConfigs{Expiration: -time.Minute})
	token, err := engine.Generate("sub", "abc")
	require.Nil(t, err)

	_, err = engine.Verify(token)
	require.Error(t, err)
}
