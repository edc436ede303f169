package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edurag/tutorcli/internal/api"
	"github.com/edurag/tutorcli/internal/model"
	"github.com/edurag/tutorcli/internal/render"
)

var errEmptyQuestion = errors.New("Please enter a question.")

func newAskCmd() *cobra.Command {
	var (
		textbook  string
		persona   string
		queryType string
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question about your materials",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if persona != "" {
				a.state.SetPersona(persona)
			}
			question := strings.TrimSpace(strings.Join(args, " "))
			return askQuestion(cmd, a, question, textbook, queryType)
		},
	}
	cmd.Flags().StringVar(&textbook, "textbook", "", "Restrict retrieval to one material id")
	cmd.Flags().StringVar(&persona, "persona", "", "Tutor persona (e.g. helpful_tutor, socratic)")
	cmd.Flags().StringVar(&queryType, "type", "rag", "Query type: rag or sql")
	return cmd
}

// askQuestion runs one question/answer exchange: client-side validation,
// the API call, transcript bookkeeping, and rendering.
func askQuestion(cmd *cobra.Command, a *app, question, textbookID, queryType string) error {
	if question == "" {
		// Blocked client-side; no request is sent.
		return errEmptyQuestion
	}
	out := cmd.OutOrStdout()

	userMsg := a.state.AppendMessage(model.Message{Role: model.RoleUser, Content: question})
	if err := a.history.Append(userMsg); err != nil {
		a.log.Warn("persist message", "error", err.Error())
	}

	answer, err := a.client.Ask(cmd.Context(), api.AskRequest{
		Question:   question,
		Type:       queryType,
		Persona:    a.state.Persona(),
		TextbookID: textbookID,
	})
	if err != nil {
		// The server's own message when it sent one, a connectivity note
		// otherwise. Either way the transcript records the failure and the
		// session stays usable.
		content := "Sorry, I encountered an error. Please check your connection and try again."
		if api.IsServerError(err) {
			content = err.Error()
		} else {
			a.log.Error("ask failed", "error", err.Error())
		}
		a.state.AppendMessage(model.Message{Role: model.RoleSystem, Content: content})
		fmt.Fprintln(out, content)
		return nil
	}

	msg := a.state.AppendMessage(model.Message{
		Role:           model.RoleAssistant,
		Content:        answer.Answer,
		Sources:        answer.Sources,
		ResponseTimeMs: answer.ResponseTimeMs,
		QueryLogID:     answer.QueryLogID,
	})
	if err := a.history.Append(msg); err != nil {
		a.log.Warn("persist message", "error", err.Error())
	}
	fmt.Fprint(out, render.Answer(msg))
	if answer.QueryLogID != "" {
		fmt.Fprintf(out, "Rate this answer: edurag feedback %s --rating 1..5\n", answer.QueryLogID)
	}
	if stats, err := a.client.SessionStats(cmd.Context()); err == nil {
		a.state.SetStats(*stats)
	}
	return nil
}

func newChatCmd() *cobra.Command {
	var textbook string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session",
		Long: `Starts an interactive session. Besides questions, the prompt accepts:
  /persona <name>   switch tutor persona
  /audit            toggle audit mode
  /materials        show the materials list
  /stats            show session stats
  /clear            clear the local transcript
  /export <file>    export the local transcript as JSON
  /quit             leave the session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if err := a.loadMaterials(cmd.Context()); err != nil {
				a.log.Warn("load materials", "error", err.Error())
			}
			// Reconcile anything still processing while the user chats.
			a.tracker.TrackPending(cmd.Context(), a.state.Materials())

			fmt.Fprintln(out, "Welcome to EduRAG! Ask me anything about your materials. /quit to leave.")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					fmt.Fprintln(out, errEmptyQuestion.Error())
					continue
				}
				if strings.HasPrefix(line, "/") {
					if quit := runChatCommand(cmd, a, line); quit {
						break
					}
					continue
				}
				if err := askQuestion(cmd, a, line, textbook, "rag"); err != nil {
					fmt.Fprintln(out, err.Error())
				}
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&textbook, "textbook", "", "Restrict retrieval to one material id")
	return cmd
}

// runChatCommand handles slash commands; returns true on /quit.
func runChatCommand(cmd *cobra.Command, a *app, line string) bool {
	out := cmd.OutOrStdout()
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/persona":
		if len(fields) < 2 {
			fmt.Fprintf(out, "Current persona: %s\n", a.state.Persona())
			return false
		}
		a.state.SetPersona(fields[1])
		fmt.Fprintf(out, "Switched to %s tutor mode\n", fields[1])
	case "/audit":
		on := !a.state.AuditMode()
		a.state.SetAuditMode(on)
		if on {
			fmt.Fprintln(out, "Audit mode enabled - all interactions are being logged")
		} else {
			fmt.Fprintln(out, "Audit mode disabled")
		}
	case "/materials":
		printMaterials(cmd, a)
	case "/stats":
		printStats(out, a.state.Stats())
	case "/clear":
		a.state.ClearTranscript()
		if err := a.history.Clear(); err != nil {
			fmt.Fprintln(out, "Failed to clear chat history")
			return false
		}
		fmt.Fprintln(out, "Chat history cleared!")
	case "/export":
		if len(fields) < 2 {
			fmt.Fprintln(out, "Usage: /export <file>")
			return false
		}
		if err := exportTranscript(a, fields[1]); err != nil {
			fmt.Fprintf(out, "Export failed: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "Chat exported successfully!")
	default:
		fmt.Fprintf(out, "Unknown command %s\n", fields[0])
	}
	return false
}

func exportTranscript(a *app, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return a.history.Export(f)
}

func newFeedbackCmd() *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "feedback <query-log-id>",
		Short: "Rate a prior answer (1-5 stars)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rating < 1 || rating > 5 {
				// Blocked client-side; no request is sent.
				return errors.New("Please select a rating.")
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.client.SubmitFeedback(cmd.Context(), api.FeedbackRequest{
				QueryLogID:   args[0],
				Rating:       rating,
				FeedbackText: comment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thank you for your feedback!")
			return nil
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Star rating, 1 to 5 (required)")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Optional free-text comment")
	return cmd
}

func printStats(out io.Writer, stats model.SessionStats) {
	fmt.Fprintf(out, "Questions asked:   %d\n", stats.QuestionsAsked)
	fmt.Fprintf(out, "Avg response time: %.0fms\n", stats.AvgResponseTime)
	fmt.Fprintf(out, "Avg rating:        %.1f\n", stats.AvgRating)
	fmt.Fprintf(out, "Sources used:      %d\n", stats.SourcesUsed)
}
