package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edurag/tutorcli/internal/api"
	"github.com/edurag/tutorcli/internal/render"
	"github.com/edurag/tutorcli/internal/upload"
)

func newUploadCmd() *cobra.Command {
	var (
		title   string
		subject string
		grade   string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a study material (pdf, docx or txt)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			req := upload.Request{
				FilePath:  args[0],
				Title:     title,
				SubjectID: subject,
				GradeID:   grade,
			}
			limits := upload.Limits{Max: a.cfg.MaxFileBytes, Warn: a.cfg.WarnFileBytes}
			warnings, err := upload.Validate(req, limits)
			if err != nil {
				// Validation failures never reach the network.
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "⚠️  %s\n", w)
			}

			material, err := a.client.UploadMaterial(ctx, api.UploadRequest{
				FilePath:  req.FilePath,
				Title:     req.Title,
				SubjectID: req.SubjectID,
				GradeID:   req.GradeID,
			})
			if err != nil {
				return err
			}
			// Optimistic insert: the record shows up immediately with its
			// pending status while the server processes it.
			a.state.InsertMaterial(*material)
			fmt.Fprintln(cmd.OutOrStdout(), "Content uploaded successfully! Processing will begin shortly.")
			fmt.Fprintln(cmd.OutOrStdout(), render.MaterialLine(render.NewMaterialRow(material)))

			if !watch {
				return nil
			}
			a.tracker.Track(ctx, material)
			a.tracker.Wait()
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Display title for the material")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject id")
	cmd.Flags().StringVarP(&grade, "grade", "g", "", "Grade id")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll processing status until it is terminal")
	return cmd
}
