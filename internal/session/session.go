// Package session holds what a browser client would keep in local storage:
// where the backend is, who is calling and which table is ordering.
package session

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMissingBaseURL  = errors.New("session: backend url is required")
	ErrMissingToken    = errors.New("session: auth token is required")
	ErrMissingBranch   = errors.New("session: branch id is required")
	ErrMissingTable    = errors.New("session: table id is required")
	ErrInvalidTableNum = errors.New("session: table number must be a positive integer")
	ErrMissingTableTok = errors.New("session: table session token is required")
)

type Session struct {
	BaseURL      string
	Token        string
	BranchID     string
	TableID      string
	TableNumber  string
	SessionToken string
}

// AuthHeader is the Authorization value, empty when no token is set.
func (s Session) AuthHeader() string {
	tok := strings.TrimSpace(s.Token)
	if tok == "" {
		return ""
	}
	return "Token " + tok
}

// TableNumberInt parses TableNumber; it fails unless the number is positive.
func (s Session) TableNumberInt() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s.TableNumber))
	if err != nil || n <= 0 {
		return 0, ErrInvalidTableNum
	}
	return n, nil
}

// ValidateStaff checks what the kitchen dashboard needs.
func (s Session) ValidateStaff() error {
	var errs []error
	if strings.TrimSpace(s.BaseURL) == "" {
		errs = append(errs, ErrMissingBaseURL)
	}
	if strings.TrimSpace(s.Token) == "" {
		errs = append(errs, ErrMissingToken)
	}
	if strings.TrimSpace(s.BranchID) == "" {
		errs = append(errs, ErrMissingBranch)
	}
	return errors.Join(errs...)
}

// ValidateTable checks what a customer ordering at a table needs.
func (s Session) ValidateTable() error {
	var errs []error
	if strings.TrimSpace(s.BaseURL) == "" {
		errs = append(errs, ErrMissingBaseURL)
	}
	if strings.TrimSpace(s.TableID) == "" {
		errs = append(errs, ErrMissingTable)
	}
	if _, err := s.TableNumberInt(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(s.SessionToken) == "" {
		errs = append(errs, ErrMissingTableTok)
	}
	return errors.Join(errs...)
}
