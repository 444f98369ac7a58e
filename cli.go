package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Cardjinho/Instagram-v0/app"
	"github.com/Cardjinho/Instagram-v0/domain"
	"github.com/Cardjinho/Instagram-v0/feedsync"
	"github.com/Cardjinho/Instagram-v0/infra/auth"
	"github.com/Cardjinho/Instagram-v0/infra/config"
	"github.com/Cardjinho/Instagram-v0/infra/editor"
	"github.com/Cardjinho/Instagram-v0/infra/minio"
	"github.com/Cardjinho/Instagram-v0/infra/postgres"
	"github.com/Cardjinho/Instagram-v0/infra/seed"
	"github.com/Cardjinho/Instagram-v0/tui"
	"github.com/Cardjinho/Instagram-v0/tui/common"
)

const sessionTTL = 30 * 24 * time.Hour

// newComposer returns the composer used by -e flags.
var newComposer = func() app.Composer { return editor.NewEnvEditor() }

type rootOptions struct {
	configPath string
	backend    string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "instaterm",
		Short:         domain.AppName + " - a photo feed in your terminal",
		Long:          "Browse, like and comment on posts, follow people and share images without leaving the terminal.\n\nRun without arguments to open the feed.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/instaterm/config.yaml)")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "override backend: supabase, postgres or memory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newVersionCmd(),
		newFeedCmd(opts),
		newStoriesCmd(opts),
		newLikeCmd(opts),
		newCommentsCmd(opts),
		newCommentCmd(opts),
		newPostCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// withSignals cancels ctx on SIGINT or SIGTERM.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// signedIn opens a session, signs in if needed and returns a synchronizer.
func signedIn(ctx context.Context, opts *rootOptions) (*session, *feedsync.Synchronizer, domain.Profile, error) {
	s, err := openSession(ctx, opts)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}
	if err := s.login(ctx, tui.PromptCredentials); err != nil {
		s.Close()
		return nil, nil, domain.Profile{}, err
	}
	sync, profile, err := s.synchronizer(ctx)
	if err != nil {
		s.Close()
		return nil, nil, domain.Profile{}, err
	}
	return s, sync, profile, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	ctx, cancel := withSignals(ctx)
	defer cancel()

	s, sync, profile, err := signedIn(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	state, err := config.LoadUIState(s.cfg.UIStatePath)
	if err != nil {
		s.log.Warn("ignoring saved ui state", zap.Error(err))
	}
	root := tui.NewApp(tui.Deps{
		Sync:        sync,
		Editor:      editor.NewEnvEditor(),
		OwnUsername: profile.Username,
		UIState:     state,
		StatePath:   s.cfg.UIStatePath,
	})
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", domain.AppName, currentBuild())
		},
	}
}

func newFeedCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			view, err := sync.LoadFeed(ctx)
			if err != nil {
				return err
			}
			printFeed(cmd.OutOrStdout(), view, limit, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of posts to print (0 for all)")
	return cmd
}

func printFeed(w io.Writer, view feedsync.FeedView, limit int, now time.Time) {
	if view.Len() == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	for i, it := range view.Items {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "... %d more\n", view.Len()-limit)
			break
		}
		p := it.Post
		heart := "♡"
		if p.LikedByViewer {
			heart = "♥"
		}
		fmt.Fprintf(w, "%s  @%s  %s\n", p.ID, p.Author.Username, common.RelativeTime(p.CreatedAt, now))
		if c := strings.TrimSpace(p.CaptionText()); c != "" {
			fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(c, "\n", "\n    "))
		}
		fmt.Fprintf(w, "    %s %s  %s\n", heart, common.Plural(p.LikesCount, "like"), common.Plural(p.CommentsCount, "comment"))
	}
}

func newStoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stories",
		Short: "List visible stories grouped by owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			groups, err := sync.LoadStories(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(w, "No stories right now.")
			}
			for _, g := range groups {
				fmt.Fprintf(w, "@%s (%d)\n", g.Author.Username, len(g.Stories))
				for _, st := range g.Stories {
					fmt.Fprintf(w, "    %s  expires %s\n", st.ImageURL, st.ExpiresAt.Local().Format("Jan 2 15:04"))
				}
			}
			return nil
		},
	}
}

func newLikeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := sync.LoadFeed(ctx); err != nil {
				return err
			}
			it, ok := sync.View().Find(args[0])
			if !ok {
				return fmt.Errorf("post %s: %w", args[0], domain.ErrNotFound)
			}
			if err := sync.ToggleLike(ctx, it.Post.ID, it.Post.LikedByViewer); err != nil {
				return err
			}
			now, _ := sync.View().Find(it.Post.ID)
			verb := "Unliked"
			if now.Post.LikedByViewer {
				verb = "Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, it.Post.ID, common.Plural(now.Post.LikesCount, "like"))
			return nil
		},
	}
}

func newCommentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <post-id>",
		Short: "Print a post's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			comments, err := sync.LoadComments(ctx, args[0])
			if err != nil {
				return err
			}
			printComments(cmd.OutOrStdout(), comments, time.Now())
			return nil
		},
	}
}

func printComments(w io.Writer, comments []domain.Comment, now time.Time) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments yet.")
		return
	}
	for _, c := range comments {
		fmt.Fprintf(w, "@%s  %s\n    %s\n", c.Author.Username, common.RelativeTime(c.CreatedAt, now), c.Content)
	}
}

func newCommentCmd(opts *rootOptions) *cobra.Command {
	var useEditor bool
	cmd := &cobra.Command{
		Use:   "comment <post-id> [text...]",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()

			text := strings.Join(args[1:], " ")
			if useEditor || strings.TrimSpace(text) == "" {
				var err error
				if text, err = newComposer().Compose(ctx, text); err != nil {
					return err
				}
			}
			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			comments, err := sync.PostComment(ctx, args[0], text)
			if err != nil {
				return err
			}
			printComments(cmd.OutOrStdout(), comments, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "write the comment in $EDITOR")
	return cmd
}

func newPostCmd(opts *rootOptions) *cobra.Command {
	var (
		caption   string
		useEditor bool
	)
	cmd := &cobra.Command{
		Use:   "post <image>",
		Short: "Share an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()

			in, f, err := feedsync.OpenImage(args[0], caption)
			if err != nil {
				return err
			}
			defer f.Close()
			if useEditor {
				if in.Caption, err = newComposer().Compose(ctx, caption); err != nil {
					return err
				}
			}

			s, sync, _, err := signedIn(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			post, err := sync.CreatePost(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s\n%s\n", post.ID, post.ImageURL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&caption, "caption", "c", "", "caption text")
	cmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "write the caption in $EDITOR")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a session token",
		Long: `Sign in and store a session token.

The hosted backend asks for an email and password. The self-hosted backend
issues a token for --username, creating the profile when it does not exist;
it needs postgres.jwt_secret to be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()

			switch s.cfg.Backend {
			case config.BackendSupabase:
				if err := s.login(ctx, tui.PromptCredentials); err != nil {
					return err
				}
			case config.BackendPostgres:
				if err := issueLocalToken(ctx, s, username); err != nil {
					return err
				}
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "The memory backend needs no sign-in.")
				return nil
			}
			_, profile, err := s.synchronizer(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as @%s\n", profile.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "profile to sign in as (self-hosted backend)")
	return cmd
}

func issueLocalToken(ctx context.Context, s *session, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("--username is required for the postgres backend")
	}
	actor := domain.Actor{Handle: username}
	p, err := s.store.SelectProfile(ctx, username)
	switch {
	case err == nil:
		actor.ID = p.ID
		actor.FullName = p.FullName
	case errors.Is(err, domain.ErrNotFound):
		actor.ID = uuid.NewString()
	default:
		return err
	}
	token, err := auth.IssueToken(actor, s.cfg.Postgres.JWTSecret, sessionTTL, time.Now())
	if err != nil {
		return err
	}
	return s.tokens.Save(token)
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.identity.SignOut(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the self-hosted schema and storage bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if s.pool == nil {
				return errors.New("migrate needs the postgres backend")
			}
			if err := postgres.Migrate(ctx, s.pool); err != nil {
				return err
			}
			if st, ok := s.objects.(*minio.Storage); ok {
				if err := st.EnsureBucket(ctx); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		users, posts int
		seedValue    int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the self-hosted database with generated demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := withSignals(cmd.Context())
			defer cancel()
			s, err := openSession(ctx, opts)
			if err != nil {
				return err
			}
			defer s.Close()
			if s.pool == nil {
				return errors.New("seed needs the postgres backend")
			}
			ds := seed.Generate(seed.Options{Users: users, PostsPerUser: posts, Seed: seedValue, Now: time.Now()})
			if err := postgres.Seed(ctx, s.pool, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d profiles, %d posts, %d comments, %d stories.\n",
				len(ds.Profiles), len(ds.Posts), len(ds.Comments), len(ds.Stories))
			if len(ds.Profiles) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Try: instaterm login --username %s\n", ds.Profiles[0].Username)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 8, "number of profiles")
	cmd.Flags().IntVar(&posts, "posts", 3, "posts per profile")
	cmd.Flags().Int64Var(&seedValue, "seed", demoSeed, "random seed")
	return cmd
}
