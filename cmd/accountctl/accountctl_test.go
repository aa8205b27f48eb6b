package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/researchdt/internal/server/apierror"
	"github.com/dmitrijs2005/researchdt/internal/server/models"
	"github.com/dmitrijs2005/researchdt/internal/server/services"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	called bool
	err    error
}

func (f *fakeMigrator) RunMigrations(context.Context, *sql.DB) error {
	f.called = true
	return f.err
}

type fakeCreator struct {
	got *services.CreateInput
	err error
}

func (f *fakeCreator) CreateSuperuser(_ context.Context, in services.CreateInput) (*models.Account, error) {
	f.got = &in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Account{User: models.User{ID: "u-1", Email: in.Email, IsSuperuser: true}}, nil
}

func stubDB(t *testing.T) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	orig := openDB
	openDB = func(context.Context) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = orig })
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		if len(answers) == 0 {
			return nil, errors.New("no more input")
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func newTestCmd(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return cmd, out
}

func defaultOptions() superuserOptions {
	return superuserOptions{name: "admin", gender: "male", locale: "en", os: "unknown"}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "createsuperuser"}, names)
	assert.NotNil(t, root.PersistentFlags().Lookup("dsn"))
}

func TestRunMigrate(t *testing.T) {
	stubDB(t)
	cmd, out := newTestCmd("")

	m := &fakeMigrator{}
	require.NoError(t, runMigrate(cmd, m))
	assert.True(t, m.called)
	assert.Contains(t, out.String(), "Migrations completed successfully")
}

func TestRunMigrate_Errors(t *testing.T) {
	stubDB(t)
	cmd, _ := newTestCmd("")
	require.Error(t, runMigrate(cmd, &fakeMigrator{err: errors.New("dirty")}))

	orig := openDB
	openDB = func(context.Context) (*sql.DB, error) { return nil, errors.New("refused") }
	t.Cleanup(func() { openDB = orig })
	m := &fakeMigrator{}
	require.Error(t, runMigrate(cmd, m))
	assert.False(t, m.called)
}

func TestRunCreateSuperuser_PromptsForEmail(t *testing.T) {
	stubPasswords(t, "s3cret-pass", "s3cret-pass")
	cmd, out := newTestCmd("root@example.com\n")

	svc := &fakeCreator{}
	require.NoError(t, runCreateSuperuser(cmd, svc, defaultOptions()))

	require.NotNil(t, svc.got)
	assert.Equal(t, "root@example.com", svc.got.Email)
	assert.Equal(t, "s3cret-pass", svc.got.Password)
	assert.Equal(t, models.GenderMale, svc.got.Info.Gender)
	assert.Equal(t, models.OSUnknown, svc.got.SystemInfo.OS)
	assert.Contains(t, out.String(), "Superuser created: root@example.com (u-1)")
}

func TestRunCreateSuperuser_PasswordMismatch(t *testing.T) {
	stubPasswords(t, "one-password", "another-one")
	cmd, _ := newTestCmd("")

	opts := defaultOptions()
	opts.email = "root@example.com"
	svc := &fakeCreator{}

	err := runCreateSuperuser(cmd, svc, opts)
	require.EqualError(t, err, "passwords didn't match")
	assert.Nil(t, svc.got)
}

func TestRunCreateSuperuser_InvalidChoice(t *testing.T) {
	cmd, _ := newTestCmd("")
	opts := defaultOptions()
	opts.gender = "robot"

	require.Error(t, runCreateSuperuser(cmd, &fakeCreator{}, opts))
}

func TestRunCreateSuperuser_ReportsFieldErrors(t *testing.T) {
	stubPasswords(t, "123", "123")
	cmd, _ := newTestCmd("")
	opts := defaultOptions()
	opts.email = "root@example.com"

	fields := apierror.FieldErrors{}
	fields.Add("password", apierror.CodePasswordTooShort, "This password is too short.")
	fields.Add("email", apierror.CodeEmailExist, "Email is exist")

	err := runCreateSuperuser(cmd, &fakeCreator{err: fields.Err()}, opts)
	require.EqualError(t, err, "email: Email is exist; password: This password is too short.")
}
