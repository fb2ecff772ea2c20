package user

import (
	"context"

	"github.com/azedu/quizdesk/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose side effects run synchronously,
// so tests can observe sent emails and stored codes deterministically.
func NewServiceMock(repo Repository, mailSvc core.EmailService, otpStore OTPStore, conf *core.Config) Service {
	return &serviceMock{
		service: service{
			repo:     repo,
			mailSvc:  mailSvc,
			otpStore: otpStore,
			conf:     conf,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := GenerateOTP()
	if err != nil {
		return err
	}
	if err = svc.otpStore.Set(ctx, usr.Email, code, svc.conf.OTPTimeout); err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr, code)
	return nil
}
