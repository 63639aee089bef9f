package cli

import (
	"context"
	"fmt"
	"path"
	"text/tabwriter"

	"github.com/dmitrijs2005/securepass/internal/client/client"
	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/filex"
	"github.com/dmitrijs2005/securepass/internal/netx"
)

// BackupDir is where downloaded snapshots are kept, relative to the working
// directory.
const BackupDir = "backups"

// download and save are swapped in tests.
var download = netx.DownloadPresignedURL
var save = filex.WriteInSubDir

// List prints the caller's credentials as a table.
func (a *App) List(ctx context.Context) error {
	creds, err := a.api.List(ctx)
	if err != nil {
		return err
	}

	if len(creds) == 0 {
		fmt.Fprintln(a.out, "Vault is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSITE\tUSERNAME\tPASSWORD")
	for _, c := range creds {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Site, c.UserName, c.Password)
	}
	return tw.Flush()
}

// Add prompts for a new credential and stores it.
func (a *App) Add(ctx context.Context) error {
	site, err := getSimpleText(a.reader, "Site", a.out)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Username on the site (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Password for the site")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	saved, err := a.api.Add(ctx, client.Credential{Site: site, UserName: userName, Password: string(password)})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Saved with id", saved.ID)
	return nil
}

// Delete removes a credential by id.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.api.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Backup asks the server to export the vault, then keeps a local copy of the
// encrypted snapshot. A failed download still leaves the remote copy usable.
func (a *App) Backup(ctx context.Context) error {
	b, err := a.api.Backup(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Backup stored as", b.Key)

	data, err := download(ctx, b.URL)
	if err != nil {
		fmt.Fprintln(a.out, "Download (valid for a limited time):", b.URL)
		return fmt.Errorf("fetch backup: %w", err)
	}

	p, err := save(BackupDir, path.Base(b.Key), data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local copy saved to", p)
	return nil
}
