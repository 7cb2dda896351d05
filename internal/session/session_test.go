package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHeader(t *testing.T) {
	assert.Equal(t, "Token abc", Session{Token: " abc "}.AuthHeader())
	assert.Equal(t, "", Session{}.AuthHeader())
}

func TestValidateStaff(t *testing.T) {
	require.NoError(t, Session{BaseURL: "http://x", Token: "t", BranchID: "1"}.ValidateStaff())

	err := Session{BaseURL: "http://x"}.ValidateStaff()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingToken))
	assert.True(t, errors.Is(err, ErrMissingBranch))
	assert.False(t, errors.Is(err, ErrMissingBaseURL))
}

func TestValidateTable(t *testing.T) {
	ok := Session{BaseURL: "http://x", TableID: "4", TableNumber: "12", SessionToken: "s"}
	require.NoError(t, ok.ValidateTable())

	n, err := ok.TableNumberInt()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, num := range []string{"", "0", "-3", "twelve"} {
		bad := ok
		bad.TableNumber = num
		assert.ErrorIs(t, bad.ValidateTable(), ErrInvalidTableNum, num)
	}

	bad := ok
	bad.SessionToken = ""
	assert.ErrorIs(t, bad.ValidateTable(), ErrMissingTableTok)
}
