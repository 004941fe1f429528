package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/taskdoc/internal/render"
	"github.com/desertthunder/taskdoc/internal/services"
	"github.com/desertthunder/taskdoc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Init writes the example config and, next to it, the block template it references.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	configPath := r.resolveConfigPath(cmd)

	r.logger.Info("creating config from template", "path", configPath)
	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	templatePath := filepath.Join(filepath.Dir(configPath), shared.ExampleTemplatePath)
	created, err := shared.CreateTemplateFile(templatePath)
	if err != nil {
		return err
	}
	if created {
		r.logger.Info("template created", "path", templatePath)
	}

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlain("✓ Example template at %s\n", templatePath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set google_sheets.spreadsheet_id and each doc_id in %s\n", configPath)
	r.writePlain("2. Point credentials.path (or %s) at a service account key\n", shared.EnvCredentialsPath)
	r.writePlain("3. Share the sheet and docs with the service account, then run 'taskdoc preview'\n")
	return nil
}

// Validate loads the config and parses every enabled block's template.
//
// With --credentials the service account key is loaded too. Nothing is fetched or written.
func (r *Runner) Validate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer()
	var errs []error
	enabled := 0

	for _, b := range cfg.Blocks() {
		if !b.Enabled {
			r.writePlain("- %s (disabled)\n", b.Name)
			continue
		}
		enabled++

		if err := renderer.Check(b.Template); err != nil {
			errs = append(errs, fmt.Errorf("block %q: %w", b.Name, err))
			r.writePlain("✗ %s: %v\n", b.Name, err)
			continue
		}
		if err := renderer.CheckString(b.TitleTemplate); err != nil {
			errs = append(errs, fmt.Errorf("block %q title: %w", b.Name, err))
			r.writePlain("✗ %s title: %v\n", b.Name, err)
			continue
		}
		r.writePlain("✓ %s → %s (%s)\n", b.Name, b.DocID, b.Template)
	}

	if cmd.Bool("credentials") {
		creds, err := services.LoadCredentials(ctx, services.CredentialOpts{
			Path:   cfg.CredentialsPath(),
			Scopes: cfg.Credentials.Scopes,
		})
		if err != nil {
			errs = append(errs, err)
			r.writePlain("✗ credentials: %v\n", err)
		} else {
			r.writePlain("✓ credentials for %s\n", creds.Email)
		}
	} else if path := cfg.CredentialsPath(); path == "" {
		r.logger.Warn("no credentials configured", "hint", "set credentials.path or "+shared.EnvCredentialsPath)
	} else if _, err := os.Stat(path); err != nil {
		r.logger.Warn("credentials file not found", "path", path)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	r.writePlainln("Config OK: %d block(s), %d enabled", len(cfg.DocBlocks), enabled)
	return nil
}
