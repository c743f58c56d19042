// Package cli is the interactive front end. It binds to the service
// facade and carries no vault logic of its own.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/akovardin/securepass/internal/backup"
	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/config"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/models"
	"github.com/akovardin/securepass/internal/repositories/repomanager"
	"github.com/akovardin/securepass/internal/service"
)

type App struct {
	config  *config.Config
	service *service.Service
	backups *backup.Service
	repos   repomanager.RepositoryManager
	owner   string
	token   string
	reader  *bufio.Reader
}

// NewApp wires the storage backend selected by the config: postgres when
// a DSN is set, local files and SQLite otherwise.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	var (
		repos repomanager.RepositoryManager
		err   error
	)
	if cfg.DatabaseDSN != "" {
		repos, err = repomanager.NewPostgresManager(ctx, cfg.DatabaseDSN)
	} else {
		repos, err = repomanager.NewLocalManager(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("storage init: %w", err)
	}

	owner := "default"
	if u, err := user.Current(); err == nil && u.Username != "" {
		owner = u.Username
	}

	return &App{
		config:  cfg,
		service: service.New(cfg, repos, log),
		backups: backup.NewService(repos.Vaults(), cfg, log),
		repos:   repos,
		owner:   owner,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Close() error {
	return a.repos.Close()
}

func (a *App) isUnlocked() bool {
	return a.token != ""
}

func (a *App) fail(err error) {
	fmt.Println(service.UserMessage(err))
}

// Unlock authenticates against the master password, creating it on first
// run.
func (a *App) Unlock(ctx context.Context) error {
	first, err := a.service.FirstRun(ctx, a.owner)
	if err != nil {
		a.fail(err)
		return err
	}

	if first {
		fmt.Println("No vault found, creating one.")
		pw, err := GetPassword("Choose a master password", os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)

		confirm, err := GetPassword("Repeat master password", os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(confirm)

		if string(pw) != string(confirm) {
			fmt.Println("Passwords do not match.")
			return common.ErrValidation
		}

		token, err := a.service.Setup(ctx, a.owner, string(pw))
		if err != nil {
			a.fail(err)
			return err
		}
		a.token = token
		fmt.Println("Vault created and unlocked.")
		return nil
	}

	pw, err := GetPassword("Master password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	token, err := a.service.Authenticate(ctx, a.owner, string(pw))
	if err != nil {
		a.fail(err)
		return err
	}
	a.token = token
	fmt.Println("Vault unlocked.")
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	if a.token != "" {
		a.service.Logout(a.token)
		a.token = ""
	}
	fmt.Println("Vault locked.")
	return nil
}

func (a *App) List(ctx context.Context) error {
	entries, err := a.service.ListEntries(ctx, a.token)
	if err != nil {
		a.fail(err)
		return err
	}
	if len(entries) == 0 {
		fmt.Println("The vault is empty.")
		return nil
	}
	for i, e := range entries {
		fmt.Printf("%3d  %-24s %-20s %s\n", i, e.Title, e.Username, e.Category)
	}
	return nil
}

func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	secret, err := GetPassword("Password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)
	website, err := GetSimpleText(a.reader, "Website", os.Stdout)
	if err != nil {
		return err
	}
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		return err
	}

	entry := models.CredentialEntry{
		Title:    title,
		Username: username,
		Secret:   string(secret),
		Website:  website,
		Category: category,
	}
	if _, err := a.service.AddEntry(ctx, a.token, entry); err != nil {
		a.fail(err)
		return err
	}
	fmt.Println("Entry added.")
	return nil
}

func (a *App) entryByPosition(ctx context.Context, arg string) (*models.CredentialEntry, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Println("Expected an entry number, see 'list'.")
		return nil, common.ErrNotFound
	}
	entries, err := a.service.ListEntries(ctx, a.token)
	if err != nil {
		a.fail(err)
		return nil, err
	}
	if pos < 0 || pos >= len(entries) {
		fmt.Println("No such entry.")
		return nil, common.ErrNotFound
	}
	return &entries[pos], nil
}

func (a *App) Show(ctx context.Context, arg string) error {
	e, err := a.entryByPosition(ctx, arg)
	if err != nil {
		return err
	}
	secret, err := a.service.DecryptSecret(ctx, a.token, e.ID)
	if err != nil {
		a.fail(err)
		return err
	}
	fmt.Printf("Title:    %s\nUsername: %s\nPassword: %s\nWebsite:  %s\nNotes:    %s\nCategory: %s\n",
		e.Title, e.Username, secret, e.Website, e.Notes, e.Category)
	return nil
}

func (a *App) Delete(ctx context.Context, arg string) error {
	e, err := a.entryByPosition(ctx, arg)
	if err != nil {
		return err
	}
	if err := a.service.DeleteEntry(ctx, a.token, e.ID); err != nil {
		a.fail(err)
		return err
	}
	fmt.Println("Entry deleted.")
	return nil
}

func (a *App) Share(ctx context.Context, arg string) error {
	e, err := a.entryByPosition(ctx, arg)
	if err != nil {
		return err
	}

	hoursStr, err := GetSimpleText(a.reader, "Expires in hours (default 24)", os.Stdout)
	if err != nil {
		return err
	}
	hours := 24
	if hoursStr != "" {
		if hours, err = strconv.Atoi(hoursStr); err != nil {
			fmt.Println("Expected a number of hours.")
			return err
		}
	}

	usesStr, err := GetSimpleText(a.reader, "Max accesses (0 = unlimited, default 1)", os.Stdout)
	if err != nil {
		return err
	}
	uses := 1
	if usesStr != "" {
		if uses, err = strconv.Atoi(usesStr); err != nil {
			fmt.Println("Expected a number.")
			return err
		}
	}

	id, accessToken, err := a.service.Share(ctx, a.token, e.ID, time.Duration(hours)*time.Hour, uses)
	if err != nil {
		a.fail(err)
		return err
	}

	fmt.Printf("Share id:    %s\nAccess key:  %s\n", id, accessToken)
	fmt.Println("Send the id and the access key over two different channels.")
	return nil
}

func (a *App) Shares(ctx context.Context) error {
	ts, err := a.service.ListShares(ctx, a.token)
	if err != nil {
		a.fail(err)
		return err
	}
	if len(ts) == 0 {
		fmt.Println("No shares.")
		return nil
	}
	for _, t := range ts {
		state := "active"
		if !t.Valid {
			state = "invalid"
		}
		limit := "unlimited"
		if t.MaxUses > 0 {
			limit = strconv.Itoa(t.MaxUses)
		}
		fmt.Printf("%s  %s  uses %d/%s  expires %s\n",
			t.ID, state, t.UseCount, limit, t.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) Revoke(ctx context.Context, id string) error {
	ok, err := a.service.RevokeShare(ctx, a.token, id)
	if err != nil {
		a.fail(err)
		return err
	}
	if ok {
		fmt.Println("Share revoked.")
	}
	return nil
}

// Access retrieves a shared entry; works without unlocking the vault.
func (a *App) Access(ctx context.Context, id string) error {
	key, err := GetSimpleText(a.reader, "Access key", os.Stdout)
	if err != nil {
		return err
	}

	entry, err := a.service.AccessShare(ctx, id, key)
	if err != nil {
		a.fail(err)
		return err
	}
	fmt.Printf("Title:    %s\nUsername: %s\nPassword: %s\nWebsite:  %s\nShared by: %s\n",
		entry.Title, entry.Username, entry.Password, entry.Website, entry.SharedBy)
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	owner, err := a.service.Owner(a.token)
	if err != nil {
		a.fail(err)
		return err
	}

	path, err := a.backups.Local(ctx, owner)
	if err != nil {
		a.fail(err)
		return err
	}
	fmt.Printf("Backup written to %s\n", path)

	if a.config.S3Bucket != "" {
		key, err := a.backups.Remote(ctx, owner)
		if err != nil {
			a.fail(err)
			return err
		}
		fmt.Printf("Backup uploaded as %s\n", key)
	}
	return nil
}
