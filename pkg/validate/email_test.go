package validate

import (
	"net/http"
	"testing"

	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	for _, in := range []string{"Ann@Example.COM", "  ann@example.com\t", "\nANN@EXAMPLE.com "} {
		got, err := Email(in)
		require.NoError(t, err, in)
		require.Equal(t, "ann@example.com", got)
	}

	_, err := Email("   ")
	require.Equal(t, http.StatusBadRequest, apperror.Status(err))
	require.Equal(t, "Email is required!", apperror.Message(err))

	for _, bad := range []string{"ann", "ann@example", "a b@example.com", "@example.com"} {
		_, err := Email(bad)
		require.Equal(t, http.StatusBadRequest, apperror.Status(err), bad)
		require.Equal(t, "Invalid email!", apperror.Message(err), bad)
	}
}
