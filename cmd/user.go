package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/vidhub/internal/models"
	"github.com/desertthunder/vidhub/internal/shared"
	"github.com/urfave/cli/v3"
)

// profileView is the JSON shape of a [models.Profile].
type profileView struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	DisplayName string           `json:"display_name"`
	Level       models.UserLevel `json:"level"`
	CreatedAt   time.Time        `json:"created_at"`
}

func newProfileView(p *models.Profile) profileView {
	return profileView{ID: p.ID(), Email: p.Email(), DisplayName: p.DisplayName(), Level: p.Level(), CreatedAt: p.CreatedAt()}
}

// UserAdd creates a profile.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	email := cmd.StringArg("email")
	if email == "" {
		return fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}
	level, err := models.ParseUserLevel(cmd.String("level"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	name := cmd.String("name")
	if name == "" {
		name = email
	}
	profile := models.NewProfile(email, name)
	profile.SetLevel(level)
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if err := r.profiles.Create(ctx, profile); err != nil {
		return err
	}

	r.logger.Info("user created", "email", email, "level", level)
	return r.writePlain("✓ Created %s (%s) %s\n", profile.Email(), profile.Level(), profile.ID())
}

// UserLevel changes a profile's level.
func (r *Runner) UserLevel(ctx context.Context, cmd *cli.Command) error {
	level, err := models.ParseUserLevel(cmd.StringArg("level"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if err := r.connect(ctx); err != nil {
		return err
	}

	profile, err := r.profiles.GetByEmail(ctx, cmd.StringArg("email"))
	if err != nil {
		return err
	}
	if err := r.profiles.SetLevel(ctx, profile.ID(), level); err != nil {
		return err
	}
	return r.writePlain("✓ %s is now %s\n", profile.Email(), level)
}

// UserList prints every profile.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	profiles, err := r.profiles.List(ctx, nil)
	if err != nil {
		return err
	}

	views := make([]profileView, len(profiles))
	for i, p := range profiles {
		views[i] = newProfileView(p)
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(views)))
	for _, v := range views {
		r.writePlain("%-9s %-32s %s\n", v.Level, v.Email, v.DisplayName)
	}
	return nil
}

// UserDelete removes a profile; playlists and library rows go with it.
func (r *Runner) UserDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	profile, err := r.profiles.GetByEmail(ctx, cmd.StringArg("email"))
	if err != nil {
		return err
	}
	if err := r.profiles.Delete(ctx, profile.ID()); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", profile.Email())
}
