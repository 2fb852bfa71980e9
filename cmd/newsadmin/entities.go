package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/and161185/newsadmin/internal/guard"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/service"
	"github.com/and161185/newsadmin/internal/state"
)

// resource describes one managed collection for the generic subcommands.
type resource[T service.Entity[T], In service.Input] struct {
	name  string // "authors"
	route string // guarded admin path
	svc   func() *service.EntityService[T, In]
	pick  func(state.State) state.Collection[T]
	// form registers the input flags and returns a builder reading them.
	form func(fs *pflag.FlagSet) func(fs *pflag.FlagSet) (In, error)
	// filters registers list filters beyond paging.
	filters func(fs *pflag.FlagSet) func(p *model.ListParams)
}

func authorsCmd(a *app) *cobra.Command {
	return resourceCmd(a, resource[model.Author, model.AuthorInput]{
		name:    "authors",
		route:   guard.AdminPrefix + "/authors",
		svc:     func() *service.EntityService[model.Author, model.AuthorInput] { return a.coord.Authors },
		pick:    func(s state.State) state.Collection[model.Author] { return s.Authors },
		form:    authorForm,
		filters: authorFilters,
	})
}

func categoriesCmd(a *app) *cobra.Command {
	return resourceCmd(a, resource[model.Category, model.CategoryInput]{
		name:  "categories",
		route: guard.AdminPrefix + "/categories",
		svc:   func() *service.EntityService[model.Category, model.CategoryInput] { return a.coord.Categories },
		pick:  func(s state.State) state.Collection[model.Category] { return s.Categories },
		form:  categoryForm,
	})
}

func resourceCmd[T service.Entity[T], In service.Input](a *app, r resource[T, In]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.name,
		Short: "Manage " + r.name,
	}
	guarded := func(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := a.enter(r.route); err != nil {
				return err
			}
			return run(cmd, args)
		}
	}
	cmd.AddCommand(
		r.listCmd(a, guarded),
		r.getCmd(a, guarded),
		r.createCmd(a, guarded),
		r.updateCmd(a, guarded),
		r.statusCmd(a, guarded),
		r.deleteCmd(a, guarded),
		r.deleteManyCmd(a, guarded),
	)
	return cmd
}

type wrap func(func(*cobra.Command, []string) error) func(*cobra.Command, []string) error

func (r resource[T, In]) listCmd(a *app, guarded wrap) *cobra.Command {
	var p model.ListParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of " + r.name,
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.IntVar(&p.Page, "page", 1, "page number")
	fs.IntVar(&p.Limit, "limit", 10, "page size")
	fs.StringVar(&p.SortBy, "sort-by", "createdAt", "sort field")
	fs.StringVar(&p.SortOrder, "sort-order", "desc", "asc or desc")
	var extra func(*model.ListParams)
	if r.filters != nil {
		extra = r.filters(fs)
	}
	cmd.RunE = guarded(func(cmd *cobra.Command, _ []string) error {
		if extra != nil {
			extra(&p)
		}
		if err := outcome(r.svc().GetAll(cmd.Context(), p)); err != nil {
			return err
		}
		c := r.pick(a.store.Snapshot())
		return printJSON(a.out, map[string]any{"items": c.Items, "pagination": c.Pagination})
	})
	return cmd
}

func (r resource[T, In]) getCmd(a *app, guarded wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(func(cmd *cobra.Command, args []string) error {
			if err := outcome(r.svc().GetByID(cmd.Context(), args[0])); err != nil {
				return err
			}
			return printJSON(a.out, r.pick(a.store.Snapshot()).Selected)
		}),
	}
}

func (r resource[T, In]) createCmd(a *app, guarded wrap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Args:  cobra.NoArgs,
	}
	build := r.form(cmd.Flags())
	cmd.RunE = guarded(func(cmd *cobra.Command, _ []string) error {
		in, err := build(cmd.Flags())
		if err != nil {
			return err
		}
		return outcome(r.svc().Create(cmd.Context(), in))
	})
	return cmd
}

func (r resource[T, In]) updateCmd(a *app, guarded wrap) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a record",
		Args:  cobra.ExactArgs(1),
	}
	build := r.form(cmd.Flags())
	cmd.RunE = guarded(func(cmd *cobra.Command, args []string) error {
		in, err := build(cmd.Flags())
		if err != nil {
			return err
		}
		return outcome(r.svc().Update(cmd.Context(), args[0], in))
	})
	return cmd
}

func (r resource[T, In]) statusCmd(a *app, guarded wrap) *cobra.Command {
	var active bool
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Activate or deactivate a record",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(func(cmd *cobra.Command, args []string) error {
			return outcome(r.svc().UpdateStatus(cmd.Context(), args[0], active))
		}),
	}
	cmd.Flags().BoolVar(&active, "active", true, "target state")
	return cmd
}

func (r resource[T, In]) deleteCmd(a *app, guarded wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(func(cmd *cobra.Command, args []string) error {
			return outcome(r.svc().Delete(cmd.Context(), args[0]))
		}),
	}
}

func (r resource[T, In]) deleteManyCmd(a *app, guarded wrap) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "delete-many [id...]",
		Short: "Delete several records at once",
		RunE: guarded(func(cmd *cobra.Command, args []string) error {
			ids := append([]string(nil), args...)
			if from != "" {
				b, err := readAll(cmd.InOrStdin(), from)
				if err != nil {
					return err
				}
				ids = append(ids, splitIDs(b)...)
			}
			return outcome(r.svc().DeleteMany(cmd.Context(), ids))
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "read more ids from a file, one per line ('-' = stdin)")
	return cmd
}

func splitIDs(b []byte) []string {
	var ids []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ------- forms -------

// optBool returns a pointer to the flag value when the flag was given.
func optBool(fs *pflag.FlagSet, name string) (*bool, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetBool(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func authorForm(fs *pflag.FlagSet) func(*pflag.FlagSet) (model.AuthorInput, error) {
	var in model.AuthorInput
	var avatar, cover string
	fs.StringVar(&in.FirstName, "first-name", "", "first name")
	fs.StringVar(&in.LastName, "last-name", "", "last name")
	fs.StringVar(&in.Email, "email", "", "email")
	fs.StringVar(&in.Phone, "phone", "", "10-digit phone number")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.Role, "role", "", "role")
	fs.StringVar(&in.Bio, "bio", "", "short biography")
	fs.Bool("active", false, "active flag")
	fs.StringVar(&avatar, "avatar", "", "avatar image file")
	fs.StringVar(&cover, "cover", "", "cover image file")
	return func(fs *pflag.FlagSet) (model.AuthorInput, error) {
		var err error
		out := in
		if out.IsActive, err = optBool(fs, "active"); err != nil {
			return out, err
		}
		if out.Avatar, err = loadFile(avatar); err != nil {
			return out, fmt.Errorf("avatar: %w", err)
		}
		if out.CoverImage, err = loadFile(cover); err != nil {
			return out, fmt.Errorf("cover: %w", err)
		}
		return out, nil
	}
}

func authorFilters(fs *pflag.FlagSet) func(*model.ListParams) {
	var search, role string
	fs.StringVar(&search, "search", "", "search term")
	fs.StringVar(&role, "role", "", "role filter")
	fs.Bool("active", false, "only active (true) or inactive (false)")
	fs.Bool("verified", false, "only verified (true) or unverified (false)")
	return func(p *model.ListParams) {
		p.Search, p.Role = search, role
		p.IsActive, _ = optBool(fs, "active")
		p.IsVerified, _ = optBool(fs, "verified")
	}
}

func categoryForm(fs *pflag.FlagSet) func(*pflag.FlagSet) (model.CategoryInput, error) {
	var in model.CategoryInput
	var image string
	fs.StringVar(&in.Title, "title", "", "title")
	fs.StringVar(&in.Order, "order", "", "display order")
	fs.Bool("active", false, "active flag")
	fs.StringVar(&image, "image", "", "image file")
	return func(fs *pflag.FlagSet) (model.CategoryInput, error) {
		var err error
		out := in
		if out.IsActive, err = optBool(fs, "active"); err != nil {
			return out, err
		}
		if out.Image, err = loadFile(image); err != nil {
			return out, fmt.Errorf("image: %w", err)
		}
		return out, nil
	}
}
