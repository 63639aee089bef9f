package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepass/internal/client/client"
	"github.com/dmitrijs2005/securepass/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	user     string
	password string
	authErr  error
	pingErr  error
	listErr  error
	creds    []client.Credential
	added    client.Credential
	deleted  string
	backup   client.Backup
	loggedIn bool
}

func (f *fakeClient) Register(_ context.Context, u string, p []byte) error {
	return f.Login(context.Background(), u, p)
}

func (f *fakeClient) Login(_ context.Context, u string, p []byte) error {
	if f.authErr != nil {
		return f.authErr
	}
	f.user, f.password, f.loggedIn = u, string(p), true
	return nil
}

func (f *fakeClient) Logout()                    { f.loggedIn = false }
func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) List(context.Context) ([]client.Credential, error) {
	return f.creds, f.listErr
}

func (f *fakeClient) Add(_ context.Context, c client.Credential) (client.Credential, error) {
	f.added = c
	c.ID = "new-id"
	return c, nil
}

func (f *fakeClient) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeClient) Backup(context.Context) (client.Backup, error) {
	return f.backup, nil
}

func stubInput(t *testing.T, password string) {
	t.Helper()
	oldText, oldPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = oldText, oldPw })

	getSimpleText = GetSimpleText
	getPassword = func(w io.Writer, prompt string) ([]byte, error) {
		return []byte(password), nil
	}
}

func newTestApp(api client.Client, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{ServerURL: "http://example.test", RequestTimeout: time.Second}
	return newApp(cfg, api, strings.NewReader(input), &out), &out
}

func TestLogin_SetsSession(t *testing.T) {
	stubInput(t, "pw")
	api := &fakeClient{}
	a, out := newTestApp(api, "alice\n")

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(alice)", a.status())
	assert.Equal(t, "alice", api.user)
	assert.Equal(t, "pw", api.password)
	assert.Contains(t, out.String(), "Logged in as alice")
}

func TestRegister_Failure(t *testing.T) {
	stubInput(t, "pw")
	api := &fakeClient{authErr: &client.APIError{Status: 409, Code: "Conflict", Message: "Username already exists"}}
	a, _ := newTestApp(api, "alice\n")

	err := a.Register(context.Background())
	require.Error(t, err)
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.status())
}

func TestLogout(t *testing.T) {
	api := &fakeClient{loggedIn: true}
	a, out := newTestApp(api, "")
	a.userName = "alice"

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.False(t, api.loggedIn)
	assert.Contains(t, out.String(), "Logged out")
}

func TestList(t *testing.T) {
	api := &fakeClient{creds: []client.Credential{
		{ID: "1", Site: "github.com", UserName: "bob", Password: "hunter2"},
	}}
	a, out := newTestApp(api, "")

	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "SITE")
	assert.Contains(t, out.String(), "github.com")
	assert.Contains(t, out.String(), "hunter2")
}

func TestList_Empty(t *testing.T) {
	a, out := newTestApp(&fakeClient{}, "")
	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "Vault is empty")
}

func TestList_Error(t *testing.T) {
	a, _ := newTestApp(&fakeClient{listErr: client.ErrNotLoggedIn}, "")
	require.ErrorIs(t, a.List(context.Background()), client.ErrNotLoggedIn)
}

func TestAdd(t *testing.T) {
	stubInput(t, "hunter2")
	api := &fakeClient{}
	a, out := newTestApp(api, "github.com\nbob\n")

	require.NoError(t, a.Add(context.Background()))
	assert.Equal(t, client.Credential{Site: "github.com", UserName: "bob", Password: "hunter2"}, api.added)
	assert.Contains(t, out.String(), "Saved with id new-id")
}

func TestDelete(t *testing.T) {
	api := &fakeClient{}
	a, out := newTestApp(api, "")

	require.NoError(t, a.Delete(context.Background(), "42"))
	assert.Equal(t, "42", api.deleted)
	assert.Contains(t, out.String(), "Deleted")
}

func stubBackupIO(t *testing.T, body []byte, fetchErr error) *[]string {
	t.Helper()
	oldDownload, oldSave := download, save
	t.Cleanup(func() { download, save = oldDownload, oldSave })

	var saved []string
	download = func(ctx context.Context, url string) ([]byte, error) {
		return body, fetchErr
	}
	save = func(dir, name string, data []byte) (string, error) {
		saved = append(saved, dir+"/"+name+"="+string(data))
		return "/tmp/" + dir + "/" + name, nil
	}
	return &saved
}

func TestBackup_SavesLocalCopy(t *testing.T) {
	saved := stubBackupIO(t, []byte("[]"), nil)
	api := &fakeClient{backup: client.Backup{Key: "backups/u/2026/10/17/abc.json", URL: "https://s3.example/x"}}
	a, out := newTestApp(api, "")

	require.NoError(t, a.Backup(context.Background()))
	assert.Equal(t, []string{"backups/abc.json=[]"}, *saved)
	assert.Contains(t, out.String(), "Backup stored as backups/u/2026/10/17/abc.json")
	assert.Contains(t, out.String(), "Local copy saved to /tmp/backups/abc.json")
}

func TestBackup_DownloadFailureShowsLink(t *testing.T) {
	saved := stubBackupIO(t, nil, errors.New("403"))
	api := &fakeClient{backup: client.Backup{Key: "k.json", URL: "https://s3.example/x"}}
	a, out := newTestApp(api, "")

	err := a.Backup(context.Background())
	require.ErrorContains(t, err, "fetch backup")
	assert.Empty(t, *saved)
	assert.Contains(t, out.String(), "https://s3.example/x")
}

func TestDescribe(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, "boom", describe(plain))

	v := &client.APIError{Status: 400, Code: "Validation failed", Message: "Invalid input data",
		Details: map[string]string{"username": "too short", "password": "too weak"}}
	assert.Equal(t, "Invalid input data\n  password: too weak\n  username: too short", describe(v))
}

func TestRun_WarnsWhenServerDown(t *testing.T) {
	a, out := newTestApp(&fakeClient{pingErr: client.ErrUnavailable}, "exit\n")

	a.Run(context.Background())

	assert.Contains(t, out.String(), "Welcome to SecurePass CLI")
	assert.Contains(t, out.String(), "not reachable")
	assert.Contains(t, out.String(), "Bye!")
}
