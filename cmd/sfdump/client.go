package main

import (
	"context"
	"net/url"
	"path/filepath"

	_ "gocloud.dev/blob/fileblob"

	"github.com/ksteptoe/sfdump-sub001/internal/salesforce"
	"github.com/ksteptoe/sfdump-sub001/pkg/sharded"
)

// newClient builds an API client from the validated configuration.
func newClient() *salesforce.Client {
	opts := salesforce.DefaultOptions()
	opts.InstanceURL = cfg.InstanceURL
	opts.APIVersion = cfg.APIVersion
	opts.Tokens = salesforce.StaticToken(cfg.AccessToken)
	if cfg.Retry.Attempts != 0 {
		opts.RetryAttempts = cfg.Retry.Attempts
	}
	if cfg.Retry.Backoff != 0 {
		opts.RetryBackoff = cfg.Retry.Backoff
	}
	if cfg.Retry.MaxBackoff != 0 {
		opts.RetryMaxBackoff = cfg.Retry.MaxBackoff
	}
	return salesforce.NewClient(opts)
}

// openStore opens the sharded file store rooted at the export directory.
func openStore(ctx context.Context) (*sharded.Store, error) {
	abs, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		return nil, err
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(abs),
		RawQuery: "create_dir=true",
	}
	return sharded.OpenStore(ctx, u.String())
}

// exportPath resolves a path under the export root.
func exportPath(parts ...string) string {
	return filepath.Join(append([]string{cfg.OutDir}, parts...)...)
}
