package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/appstate"
	"github.com/beashaj2001/complaintsManagement/internal/client"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"

	"github.com/spf13/cobra"
)

type appOptions struct {
	Storage    appstate.Storage
	BaseURL    string
	HTTPClient *http.Client
	Out        io.Writer
	Clock      func() time.Time
}

type app struct {
	out       io.Writer
	session   *appstate.Session
	theme     *appstate.Theme
	api       *client.Client
	evaluator *sla.Evaluator
}

func newApp(options appOptions) *app {
	session := appstate.NewSession(options.Storage)
	api := client.New(client.Options{
		BaseURL:        options.BaseURL,
		HTTPClient:     options.HTTPClient,
		Tokens:         session,
		OnUnauthorized: session.Expire,
	})
	session.Bind(api)
	return &app{
		out:       options.Out,
		session:   session,
		theme:     appstate.NewTheme(options.Storage),
		api:       api,
		evaluator: sla.NewEvaluator(sla.Options{Clock: options.Clock}),
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cmsctl",
		Short:         "Complaint management terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.complaintsCommand(),
		a.dashboardCommand(),
		a.slaCommand(),
		a.themeCommand(),
		a.chatCommand(),
		a.routeCommand(),
	)
	return root
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			user, err := a.session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.FullName, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored token and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.session.Token() != "" {
				if err := a.api.Logout(cmd.Context()); err != nil && !client.IsUnauthorized(err) {
					return err
				}
			}
			if err := a.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\nrole: %s\nuser_id: %s\n", user.FullName, user.Email, user.Role, user.UserID)
			return nil
		},
	}
}

func (a *app) complaintsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complaints",
		Aliases: []string{"c"},
		Short:   "List and manage complaints",
	}

	var params client.ComplaintListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List complaints visible to the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			complaints, err := a.api.ListComplaints(cmd.Context(), params)
			if err != nil {
				return err
			}
			a.printComplaints(complaints)
			return nil
		},
	}
	list.Flags().StringVar(&params.Status, "status", "", "Filter by status")
	list.Flags().StringVar(&params.Severity, "severity", "", "Filter by severity")
	list.Flags().StringVar(&params.TeamID, "team", "", "Filter by assigned team id")
	list.Flags().BoolVar(&params.AssignedToMe, "mine", false, "Only complaints assigned to me")
	list.Flags().IntVar(&params.Skip, "skip", 0, "Rows to skip")
	list.Flags().IntVar(&params.Limit, "limit", 0, "Maximum rows (server default 100)")

	show := &cobra.Command{
		Use:   "show <complaint-id>",
		Short: "Show one complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			complaint, err := a.api.GetComplaint(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printComplaint(complaint)
			return nil
		},
	}

	var input client.CreateComplaintInput
	create := &cobra.Command{
		Use:   "create",
		Short: "File a new complaint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input.Product == "" || input.Issue == "" || input.Description == "" {
				return fmt.Errorf("--product, --issue and --description are required")
			}
			complaint, err := a.api.CreateComplaint(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created %s (%s)\n", complaint.ComplaintNumber, complaint.ComplaintID)
			return nil
		},
	}
	create.Flags().StringVar(&input.Product, "product", "", "Product")
	create.Flags().StringVar(&input.Subproduct, "subproduct", "", "Sub-product")
	create.Flags().StringVar(&input.Issue, "issue", "", "Issue")
	create.Flags().StringVar(&input.Subissue, "subissue", "", "Sub-issue")
	create.Flags().StringVar(&input.Description, "description", "", "Description")
	create.Flags().StringVar(&input.Severity, "severity", "", "Severity: low, medium, high, critical")

	assign := &cobra.Command{
		Use:   "assign <complaint-id> <user-id>",
		Short: "Assign a complaint to an ops user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := a.api.AssignComplaint(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, message)
			return nil
		},
	}

	closeCmd := &cobra.Command{
		Use:   "close <complaint-id>",
		Short: "Mark a complaint as closed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := models.StatusClosed
			complaint, err := a.api.UpdateComplaint(cmd.Context(), args[0], client.UpdateComplaintInput{Status: &status})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Closed %s\n", complaint.ComplaintNumber)
			return nil
		},
	}

	cmd.AddCommand(list, show, create, assign, closeCmd)
	return cmd
}

func (a *app) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show complaint counts for the signed-in user's scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.api.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Total\t%d\n", stats.TotalComplaints)
			fmt.Fprintf(tw, "Open\t%d\n", stats.OpenComplaints)
			fmt.Fprintf(tw, "In process\t%d\n", stats.InProcessComplaints)
			fmt.Fprintf(tw, "Pending\t%d\n", stats.PendingComplaints)
			fmt.Fprintf(tw, "Closed\t%d\n", stats.ClosedComplaints)
			fmt.Fprintf(tw, "SLA breached\t%d\n", stats.SLABreached)
			if stats.AvgResolutionHours != nil {
				fmt.Fprintf(tw, "Avg resolution\t%s\n", sla.FormatDuration(*stats.AvgResolutionHours))
			}
			return tw.Flush()
		},
	}
}

func (a *app) slaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sla",
		Short: "Evaluate SLA status offline",
	}
	eval := &cobra.Command{
		Use:   "eval <created-at> <hours>",
		Short: "Classify a complaint created at the given time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("hours: %w", err)
			}
			result := a.evaluator.Evaluate(args[0], hours)
			fmt.Fprintf(a.out, "status=%s hours_left=%d breached=%t label=%q\n",
				result.Status, result.HoursLeft, result.IsBreached, sla.Label(result))
			return nil
		},
	}
	format := &cobra.Command{
		Use:   "format <hours>",
		Short: "Render an hour count as a remaining-time label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("hours: %w", err)
			}
			fmt.Fprintln(a.out, sla.FormatDuration(hours))
			return nil
		},
	}
	cmd.AddCommand(eval, format)
	return cmd
}

func (a *app) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the display theme",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current theme and palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.printTheme()
			return nil
		},
	}
	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between dark and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.theme.Toggle(); err != nil {
				return err
			}
			a.printTheme()
			return nil
		},
	}
	cmd.AddCommand(show, toggle)
	return cmd
}

func (a *app) chatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <query>",
		Short: "Ask the support assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := a.api.ChatbotQuery(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, answer.Response)
			return nil
		},
	}
}

func (a *app) routeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show how the route guard treats a path for this session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A rejected token just leaves the session signed out.
			_ = a.session.Restore(cmd.Context())
			decision := access.Resolve(args[0], a.session.GuardState())
			if decision.Location != "" {
				fmt.Fprintf(a.out, "%s %s\n", decision.Kind, decision.Location)
				return nil
			}
			fmt.Fprintln(a.out, decision.Kind)
			return nil
		},
	}
}

func (a *app) currentUser(ctx context.Context) (models.User, error) {
	if a.session.Token() == "" {
		return models.User{}, fmt.Errorf("not signed in, run cmsctl login")
	}
	if err := a.session.Restore(ctx); err != nil {
		return models.User{}, err
	}
	user, ok := a.session.User()
	if !ok {
		return models.User{}, fmt.Errorf("not signed in, run cmsctl login")
	}
	return user, nil
}

// slaColumn renders "<status> (<label>)" for list output.
func (a *app) slaColumn(complaint models.Complaint) string {
	result := a.evaluator.EvaluateTime(complaint.CreatedAt, float64(complaint.SLAHours))
	return fmt.Sprintf("%s (%s)", result.Status, sla.Label(result))
}

func (a *app) printComplaints(complaints []models.Complaint) {
	if len(complaints) == 0 {
		fmt.Fprintln(a.out, "No complaints found")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tSTATUS\tSEVERITY\tPRODUCT\tSLA")
	for _, complaint := range complaints {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			complaint.ComplaintNumber, complaint.Status, complaint.Severity, complaint.Product, a.slaColumn(complaint))
	}
	_ = tw.Flush()
}

func (a *app) printComplaint(complaint models.Complaint) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Number\t%s\n", complaint.ComplaintNumber)
	fmt.Fprintf(tw, "ID\t%s\n", complaint.ComplaintID)
	fmt.Fprintf(tw, "Product\t%s\n", joinNonEmpty(complaint.Product, complaint.Subproduct))
	fmt.Fprintf(tw, "Issue\t%s\n", joinNonEmpty(complaint.Issue, complaint.Subissue))
	fmt.Fprintf(tw, "Status\t%s\n", complaint.Status)
	fmt.Fprintf(tw, "Severity\t%s\n", complaint.Severity)
	fmt.Fprintf(tw, "Created\t%s\n", complaint.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "SLA\t%s\n", a.slaColumn(complaint))
	if complaint.AssignedToID != nil {
		fmt.Fprintf(tw, "Assigned to\t%s\n", *complaint.AssignedToID)
	}
	fmt.Fprintf(tw, "Description\t%s\n", complaint.Description)
	_ = tw.Flush()
}

func (a *app) printTheme() {
	colors := a.theme.Colors()
	fmt.Fprintf(a.out, "theme=%s background=%s surface=%s text=%s accent=%s\n",
		a.theme.Name(), colors.Background, colors.Surface, colors.Text, colors.Accent)
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " / ")
}
