package main

import (
	"context"
	"time"

	"github.com/azedu/quizdesk/core"
	"github.com/azedu/quizdesk/core/user"
)

// addAdmin updates or creates an administrator account.
func (cli *commandLine) addAdmin(email, fname, lname, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			CreatedAt: now,
		}
	}
	usr.FirstName = core.CleanString(fname)
	usr.LastName = core.CleanString(lname)
	usr.Role = user.RoleAdmin
	usr.GroupID = nil
	usr.UpdatedAt = now
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr, usr.IsActive)
	}
	return err
}
