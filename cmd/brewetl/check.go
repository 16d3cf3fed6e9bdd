package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"brewetl/internal/datasource/file"
	"brewetl/internal/etl"
	"brewetl/internal/storage"
)

// checkCmd validates settings (done by PersistentPreRunE) and prints the
// last ingest run per source.
func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate settings and show the last run of each source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "settings ok: storage=%s\n", s.StorageKind)

			if s.StorageKind != "postgres" {
				ok, err := file.Exists(s.DBPath)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "no database at %s yet\n", s.DBPath)
					return nil
				}
			}

			repo, err := storage.New(cmd.Context(), storage.Config{Kind: s.StorageKind, DSN: s.DBPath})
			if err != nil {
				return err
			}
			defer repo.Close()

			for _, src := range []string{etl.SourceOBDB, etl.SourceBA} {
				runs, err := repo.ListRuns(cmd.Context(), src, 1)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintf(out, "%-9s never run\n", src)
					continue
				}
				r := runs[0]
				fmt.Fprintf(out, "%-9s %-7s rows=%d table=%s at=%s", src, r.Status, r.RowCount, r.Table, r.TS.Format(time.RFC3339))
				if note := r.NoteOrEmpty(); note != "" {
					fmt.Fprintf(out, " note=%q", note)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
