package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/cryptox"
	"github.com/dmitrijs2005/securepass/internal/dbx"
	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/auth"
	"github.com/dmitrijs2005/securepass/internal/server/backup"
	"github.com/dmitrijs2005/securepass/internal/server/models"
	"github.com/dmitrijs2005/securepass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/securepass/internal/server/validation"
	"github.com/google/uuid"
)

// Cipher seals and opens stored secrets.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// BackupExporter ships an encrypted snapshot somewhere durable.
type BackupExporter interface {
	Export(ctx context.Context, ownerID string, data []byte) (backup.Result, error)
}

// CredentialInput is the client-supplied part of a credential.
type CredentialInput struct {
	Site     string
	UserName string
	Password string
}

// CredentialView is a decrypted credential as returned to its owner.
type CredentialView struct {
	ID       string `json:"id"`
	Site     string `json:"site"`
	UserName string `json:"username"`
	Password string `json:"password"`
	// DecryptError is set when Password holds the placeholder instead of
	// the secret.
	DecryptError bool `json:"decryptError,omitempty"`
}

// VaultService serves credential records to their owner only. Records of
// other users are reported as common.ErrorNotFound, the same as missing ones.
type VaultService struct {
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	backup      BackupExporter
	log         logging.Logger
	now         func() time.Time
}

// NewVaultService constructs a VaultService. exporter may be nil, which
// disables Backup.
func NewVaultService(m repomanager.RepositoryManager, cipher Cipher, exporter BackupExporter, log logging.Logger) *VaultService {
	return &VaultService{
		repomanager: m,
		cipher:      cipher,
		backup:      exporter,
		log:         log.With("module", "vault"),
		now:         time.Now,
	}
}

func caller(ctx context.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok || p.UserID == "" {
		return auth.Principal{}, common.ErrorUnauthorized
	}
	return p, nil
}

// List returns every credential of the caller. A record that fails to
// decrypt is returned with a placeholder password; the rest are unaffected.
func (s *VaultService) List(ctx context.Context) ([]CredentialView, error) {
	p, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.Credentials(s.repomanager.Conn()).ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}

	result := make([]CredentialView, 0, len(items))
	for _, c := range items {
		result = append(result, s.view(ctx, c))
	}
	return result, nil
}

// Get returns one credential of the caller.
func (s *VaultService) Get(ctx context.Context, id string) (CredentialView, error) {
	p, err := caller(ctx)
	if err != nil {
		return CredentialView{}, err
	}

	if err := recordID(id); err != nil {
		return CredentialView{}, err
	}

	c, err := s.owned(ctx, s.repomanager.Conn(), p.UserID, id)
	if err != nil {
		return CredentialView{}, err
	}
	return s.view(ctx, c), nil
}

// recordID rejects ids that cannot name any record. They are reported as
// absent rather than reaching storage.
func recordID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

// Add encrypts and stores a new credential for the caller.
func (s *VaultService) Add(ctx context.Context, in CredentialInput) (CredentialView, error) {
	p, err := caller(ctx)
	if err != nil {
		return CredentialView{}, err
	}

	c, err := s.seal(p.UserID, uuid.NewString(), in)
	if err != nil {
		return CredentialView{}, err
	}
	if err := s.repomanager.Credentials(s.repomanager.Conn()).Create(ctx, c); err != nil {
		return CredentialView{}, fmt.Errorf("save credential: %w", err)
	}

	return CredentialView{ID: c.ID, Site: c.Site, UserName: c.UserName, Password: in.Password}, nil
}

// AddBatch stores all inputs in one transaction; a single invalid entry
// rejects the whole batch.
func (s *VaultService) AddBatch(ctx context.Context, in []CredentialInput) (int, error) {
	p, err := caller(ctx)
	if err != nil {
		return 0, err
	}
	if len(in) == 0 {
		errs := validation.Errors{}
		errs.Add("credentials", "At least one credential is required")
		return 0, errs
	}

	records := make([]*models.Credential, 0, len(in))
	for i, item := range in {
		c, err := s.seal(p.UserID, uuid.NewString(), item)
		if err != nil {
			var fields validation.Errors
			if errors.As(err, &fields) {
				return 0, prefixed(fields, fmt.Sprintf("credentials[%d].", i))
			}
			return 0, err
		}
		records = append(records, c)
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Credentials(tx)
		for _, c := range records {
			if err := repo.Create(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save credentials: %w", err)
	}

	return len(records), nil
}

// Update replaces site, account label and secret of a caller's credential.
func (s *VaultService) Update(ctx context.Context, id string, in CredentialInput) (CredentialView, error) {
	p, err := caller(ctx)
	if err != nil {
		return CredentialView{}, err
	}
	if err := recordID(id); err != nil {
		return CredentialView{}, err
	}

	c, err := s.seal(p.UserID, id, in)
	if err != nil {
		return CredentialView{}, err
	}
	if err := s.repomanager.Credentials(s.repomanager.Conn()).Update(ctx, c); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return CredentialView{}, common.ErrorNotFound
		}
		return CredentialView{}, fmt.Errorf("update credential: %w", err)
	}

	return CredentialView{ID: c.ID, Site: c.Site, UserName: c.UserName, Password: in.Password}, nil
}

// Delete removes a caller's credential.
func (s *VaultService) Delete(ctx context.Context, id string) error {
	p, err := caller(ctx)
	if err != nil {
		return err
	}
	if err := recordID(id); err != nil {
		return err
	}

	if err := s.repomanager.Credentials(s.repomanager.Conn()).Delete(ctx, id, p.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

type snapshotRecord struct {
	ID        string    `json:"id"`
	Site      string    `json:"site"`
	UserName  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type snapshot struct {
	Owner     string           `json:"owner"`
	CreatedAt time.Time        `json:"createdAt"`
	Format    string           `json:"format"`
	Records   []snapshotRecord `json:"records"`
}

// Backup uploads the caller's records exactly as stored, with passwords in
// envelope form, and returns where to fetch the snapshot.
func (s *VaultService) Backup(ctx context.Context) (backup.Result, error) {
	p, err := caller(ctx)
	if err != nil {
		return backup.Result{}, err
	}
	if s.backup == nil {
		return backup.Result{}, common.ErrFeatureDisabled
	}

	items, err := s.repomanager.Credentials(s.repomanager.Conn()).ListByOwner(ctx, p.UserID)
	if err != nil {
		return backup.Result{}, fmt.Errorf("list credentials: %w", err)
	}

	snap := snapshot{
		Owner:     p.UserName,
		CreatedAt: s.now().UTC(),
		Format:    "aes-gcm-envelope",
		Records:   make([]snapshotRecord, 0, len(items)),
	}
	for _, c := range items {
		snap.Records = append(snap.Records, snapshotRecord{
			ID: c.ID, Site: c.Site, UserName: c.UserName, Password: c.Password,
			CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		})
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return backup.Result{}, fmt.Errorf("encode snapshot: %w", err)
	}

	res, err := s.backup.Export(ctx, p.UserID, data)
	if err != nil {
		return backup.Result{}, fmt.Errorf("export snapshot: %w", err)
	}

	s.log.Info(ctx, "vault backup exported", "user_id", p.UserID, "records", len(snap.Records), "key", res.Key)
	return res, nil
}

// --- helpers below ---

func (s *VaultService) owned(ctx context.Context, db dbx.DBTX, ownerID, id string) (*models.Credential, error) {
	c, err := s.repomanager.Credentials(db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if c.UserID != ownerID {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

// seal validates and sanitizes in and encrypts its password.
func (s *VaultService) seal(ownerID, id string, in CredentialInput) (*models.Credential, error) {
	site := validation.Sanitize(in.Site)
	userName := validation.Sanitize(in.UserName)
	if err := validation.Credential(site, userName, in.Password); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt: %v", common.ErrorInternal, err)
	}

	return &models.Credential{ID: id, UserID: ownerID, Site: site, UserName: userName, Password: sealed}, nil
}

func (s *VaultService) view(ctx context.Context, c *models.Credential) CredentialView {
	v := CredentialView{ID: c.ID, Site: c.Site, UserName: c.UserName}

	plain, err := s.cipher.Decrypt(c.Password)
	if err != nil {
		kind := "authentication"
		if errors.Is(err, cryptox.ErrMalformedCiphertext) {
			kind = "malformed"
		}
		s.log.Warn(ctx, "credential could not be decrypted", "credential_id", c.ID, "kind", kind)
		v.Password = common.DecryptionErrorPassword
		v.DecryptError = true
		return v
	}

	v.Password = plain
	return v
}

func prefixed(fields validation.Errors, prefix string) validation.Errors {
	out := make(validation.Errors, len(fields))
	for k, v := range fields {
		out[prefix+k] = v
	}
	return out
}
