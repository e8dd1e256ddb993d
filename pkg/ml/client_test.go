package ml_test

import (
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monasticus/mlclient/pkg/ml"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		config := &ml.Config{Host: "localhost", Port: 8000, Scheme: "https", Username: "admin", Password: "admin"}
		require.NoError(t, config.Validate())

		config = &ml.Config{Host: "localhost", Username: "admin", AccessToken: "token"}
		require.NoError(t, config.Validate())
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		var config *ml.Config
		require.ErrorIs(t, config.Validate(), ml.ErrConfigRequired)
	})

	t.Run("reports every problem", func(t *testing.T) {
		t.Parallel()

		config := &ml.Config{
			Port:         70000,
			Scheme:       "ftp",
			Username:     "admin",
			RetryWaitMin: 2 * time.Second,
			RetryWaitMax: time.Second,
		}

		err := config.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ml.ErrHostRequired)
		assert.ErrorIs(t, err, ml.ErrInvalidPort)
		assert.ErrorIs(t, err, ml.ErrInvalidScheme)
		assert.ErrorIs(t, err, ml.ErrPasswordRequired)
		assert.ErrorIs(t, err, ml.ErrInvalidRetryWait)

		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.Len(t, merr.Errors, 5)
	})
}
