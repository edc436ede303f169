package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newSubjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Manage subject taxonomy",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return errors.New("Please enter a subject name.")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			subject, err := a.client.CreateSubject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subject added successfully! (%s)\n", subject.ID)
			return nil
		},
	})
	return cmd
}

func newGradesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "Manage grade taxonomy",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <level>",
		Short: "Create a grade level (1-12)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil || level < 1 || level > 12 {
				// Blocked client-side; no request is sent.
				return errors.New("Please enter a valid grade level (1-12).")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			grade, err := a.client.CreateGrade(cmd.Context(), level)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Grade added successfully! (%s)\n", grade.ID)
			return nil
		},
	})
	return cmd
}
