package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/domain/user"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Login struct {
	Service booking.StorageService
}

func (u Login) Execute(ctx context.Context, username, password string) (user.Role, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", errors.New("please enter username and password")
	}
	res, err := u.Service.Authenticate(ctx, username, password)
	if err != nil {
		return "", asRemote("authenticate", err)
	}
	if !res.Success {
		return "", ErrInvalidCredentials
	}
	role, err := user.ParseRole(res.Role)
	if err != nil {
		return "", &booking.RemoteError{Op: "authenticate", Err: err}
	}
	return role, nil
}

func asRemote(op string, err error) error {
	var re *booking.RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &booking.RemoteError{Op: op, Err: err}
}
