package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/magicJie/vaultwarden/internal/common"
	"github.com/magicJie/vaultwarden/internal/server/models"
	"github.com/magicJie/vaultwarden/internal/server/services"
	"github.com/magicJie/vaultwarden/internal/shared"
	"github.com/spf13/cobra"
)

func newMigrateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// opening the store migrates it
			return o.run(cmd, func(ctx context.Context, _ *services.AttachmentService) error {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func newAddCommand(o *options) *cobra.Command {
	var (
		key  string
		name string
	)

	cmd := &cobra.Command{
		Use:   "add <cipher-uuid> <file>",
		Short: "Store a file as a new attachment of a cipher",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher, path := args[0], args[1]
			if err := validateCiphers(cipher); err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(path)
			}

			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				id, err := models.NewAttachmentID()
				if err != nil {
					return err
				}

				a := models.NewAttachment(id, cipher, name, info.Size())
				if err := svc.Upload(ctx, a, f); err != nil {
					return err
				}

				// the key arrives after the upload, as with clients that
				// send it in a second request
				if cmd.Flags().Changed("key") {
					a.Key = &key
					if err := svc.Save(ctx, a); err != nil {
						return err
					}
				}

				fmt.Fprintln(cmd.OutOrStdout(), a.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "attachment key to store with the record")
	cmd.Flags().StringVar(&name, "name", "", "display file name (default: base name of <file>)")
	return cmd
}

func newListCommand(o *options) *cobra.Command {
	var ciphers []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attachments of one or more ciphers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(ciphers) == 0 {
				return fmt.Errorf("at least one --cipher is required")
			}
			if err := validateCiphers(ciphers...); err != nil {
				return err
			}

			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				var (
					as  []*models.Attachment
					err error
				)
				if len(ciphers) == 1 {
					as, err = svc.FindByCipher(ctx, ciphers[0])
				} else {
					as, err = svc.FindByCiphers(ctx, ciphers)
				}
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCIPHER\tSIZE\tNAME")
				for _, a := range as {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.CipherUUID, shared.DisplaySize(a.FileSize), a.FileName)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringSliceVar(&ciphers, "cipher", nil, "cipher uuid (repeatable)")
	return cmd
}

func newShowCommand(o *options) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "show <attachment-id>",
		Short: "Print the API representation of an attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				a, err := find(ctx, svc, args[0])
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(svc.Representation(a, host))
			})
		},
	}

	cmd.Flags().StringVar(&host, "host", "http://localhost", "public base URL used in the download link")
	return cmd
}

func newURLCommand(o *options) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "url <attachment-id>",
		Short: "Print a temporary download URL (s3 storage only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				a, err := find(ctx, svc, args[0])
				if err != nil {
					return err
				}
				url, err := svc.DownloadURL(ctx, a, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "how long the URL stays valid")
	return cmd
}

func newDeleteCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <attachment-id>",
		Short: "Delete one attachment and its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				a, err := find(ctx, svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(ctx, a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", a.ID)
				return nil
			})
		},
	}
}

func newPurgeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <cipher-uuid>",
		Short: "Delete every attachment of a cipher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cipher := args[0]
			if err := validateCiphers(cipher); err != nil {
				return err
			}

			return o.run(cmd, func(ctx context.Context, svc *services.AttachmentService) error {
				as, err := svc.FindByCipher(ctx, cipher)
				if err != nil {
					return err
				}
				if err := svc.DeleteAllByCipher(ctx, cipher); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d attachment(s) of %s\n", len(as), cipher)
				return nil
			})
		},
	}
}

func find(ctx context.Context, svc *services.AttachmentService, id string) (*models.Attachment, error) {
	a, found, err := svc.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("attachment %s: %w", id, common.ErrorNotFound)
	}
	return a, nil
}

func validateCiphers(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q", common.ErrorInvalidCipherUUID, id)
		}
	}
	return nil
}
