package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/azedu/quizdesk/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on FirstName, LastName or Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		QueryTeachers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// GetProfile returns the user with Department and Group display refs populated.
		GetProfile(ctx context.Context, id int) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		CheckUniqueness(email string, exclUsers ...User) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		Teachers(ctx context.Context) ([]User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetProfile(ctx context.Context, id int) (User, error)
		Update(ctx context.Context, id int, uu UpdateUser) (User, error)
		Delete(ctx context.Context, ids ...int) error
		SetLastLogin(ctx context.Context, usr User) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		VerifyOTP(ctx context.Context, email, code string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		otpStore OTPStore
		conf     *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, otpStore OTPStore, conf *core.Config) *service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		otpStore: otpStore,
		conf:     conf,
	}
}

func (svc *service) CheckUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      nu.Role,
		GroupID:   nu.GroupID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) Teachers(ctx context.Context) ([]User, error) {
	return svc.repo.QueryTeachers(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) GetProfile(ctx context.Context, id int) (User, error) {
	return svc.repo.GetProfile(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		FirstName: uu.FirstName,
		LastName:  uu.LastName,
		Email:     uu.Email,
		Role:      uu.Role,
		GroupID:   uu.GroupID,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Role != RoleStudent {
		usr.GroupID = nil
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr)
}

// RequestPasswordReset generates a one-time code for the account and mails it.
// The code replaces any previously issued one.
func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	code, err := GenerateOTP()
	if err != nil {
		return errors.Wrap(err, "generating code")
	}
	if err = svc.otpStore.Set(ctx, usr.Email, code, svc.conf.OTPTimeout); err != nil {
		return errors.Wrap(err, "storing code")
	}
	svc.sendPasswordResetMail(usr, code)
	return nil
}

func (svc *service) VerifyOTP(ctx context.Context, email, code string) error {
	return verifyOTP(ctx, svc.otpStore, core.CleanString(email, true /* lower */), code)
}

// ResetPassword sets a new password after re-verifying the one-time code.
// The code is consumed on success.
func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	if err := verifyOTP(ctx, svc.otpStore, rp.Email, rp.OTP); err != nil {
		return err
	}
	usr, err := svc.repo.GetUserByEmail(ctx, rp.Email)
	if err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	if _, err = svc.repo.UpdateUser(ctx, usr, nil); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return svc.otpStore.Delete(ctx, rp.Email)
}

func (svc *service) sendPasswordResetMail(usr User, code string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset_otp",
		TemplateData: struct {
			FirstName string
			Code      string
			ExpiresIn string
		}{usr.FirstName, code, otpExpiryText(svc.conf.OTPTimeout)},
	})
}
