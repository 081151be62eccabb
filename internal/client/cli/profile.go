package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/ghosiportal/internal/client/models"
)

const profileFieldsHelp = "Profile fields: dateOfBirth, gender (male|female), contactNumber, height, " +
	"maritalStatus (never_married|divorced|widowed), weight, education, occupation, income, " +
	"country, state, city, hobbies, about_me"

var errUsage = errors.New("usage")

// Profile dispatches "profile create|update|delete".
func (a *App) Profile(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		printlnFn("Usage: profile create|update|delete")
		return errUsage
	}

	switch args[0] {
	case "create":
		return a.createProfile(ctx)
	case "update":
		return a.updateProfile(ctx)
	case "delete":
		return a.deleteProfile(ctx)
	default:
		printlnFn("Usage: profile create|update|delete")
		return errUsage
	}
}

func (a *App) createProfile(ctx context.Context) error {
	var p models.MatrimonialProfile
	if err := a.readProfile(&p); err != nil {
		return err
	}
	a.matrimonial.CreateProfile(ctx, p, a.navigate)
	return a.matrimonialError()
}

func (a *App) updateProfile(ctx context.Context) error {
	var p models.ProfileUpdate
	if err := a.readProfile(&p); err != nil {
		return err
	}
	a.matrimonial.UpdateProfile(ctx, p, a.navigate)
	return a.matrimonialError()
}

func (a *App) deleteProfile(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete your matrimonial profile? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		printlnFn("Cancelled")
		return nil
	}
	a.matrimonial.DeleteProfile(ctx, a.navigate)
	return a.matrimonialError()
}

// readProfile reads name=value lines into dst, a MatrimonialProfile or a
// ProfileUpdate, through their JSON field names. user_id defaults to the
// logged-in user.
func (a *App) readProfile(dst any) error {
	values, rejected, err := getFieldValues(a.reader, profileFieldsHelp, a.out)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		printlnFn("Ignoring line:", r)
	}

	doc := make(map[string]any, len(values)+1)
	for k, v := range values {
		doc[k] = v
	}
	if _, ok := doc["user_id"]; !ok {
		doc["user_id"] = a.userID()
	}

	if err := models.DecodeFields(doc, dst); err != nil {
		printlnFn("Invalid profile fields:", err)
		return err
	}
	return nil
}

// userID is the numeric id of the logged-in user. A non-numeric session id
// falls back to the cached profile, which is cleared whenever the session
// user changes. Zero when unknown.
func (a *App) userID() int {
	if u := a.session.State().User; u != nil {
		if id, err := strconv.Atoi(u.ID); err == nil && id > 0 {
			return id
		}
	}
	if p := a.matrimonial.State().Profile; p != nil && p.UserID > 0 {
		return p.UserID
	}
	return 0
}

func (a *App) matrimonialError() error {
	if st := a.matrimonial.State(); st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}

// Matches fetches and prints the matches of the logged-in user.
func (a *App) Matches(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	matches := a.matrimonial.GetMatches(ctx, a.userID())
	if err := a.matrimonialError(); err != nil {
		return err
	}
	a.printCandidates(matches)
	return nil
}

// Search filters the candidate directory. Arguments are key=value pairs:
// gender, ageFrom, ageTo, motherTongue.
func (a *App) Search(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	f, err := parseFilter(args)
	if err != nil {
		printlnFn("Usage: search [gender=female] [ageFrom=25] [ageTo=35] [motherTongue=Gujarati]")
		return err
	}
	if _, err := a.matrimonial.LoadCandidates(ctx); err != nil {
		printlnFn("Could not load profiles:", err)
		return err
	}
	a.printCandidates(a.matrimonial.Search(f))
	return nil
}

func parseFilter(args []string) (models.SearchFilter, error) {
	var f models.SearchFilter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return f, fmt.Errorf("%w: %q", errUsage, arg)
		}
		var err error
		switch strings.ToLower(key) {
		case "gender":
			f.Gender = value
		case "agefrom", "from":
			f.AgeFrom, err = strconv.Atoi(value)
		case "ageto", "to":
			f.AgeTo, err = strconv.Atoi(value)
		case "mothertongue", "language":
			f.MotherTongue = value
		default:
			return f, fmt.Errorf("%w: unknown filter %q", errUsage, key)
		}
		if err != nil {
			return f, fmt.Errorf("%s: %w", key, err)
		}
	}
	return f, nil
}

func (a *App) printCandidates(cs []models.MatchCandidate) {
	if len(cs) == 0 {
		fmt.Fprintln(a.out, "No profiles found")
		return
	}
	for _, c := range cs {
		fmt.Fprintf(a.out, "%-5d %-24s %-3d %-7s %-12s %s\n", c.ID, c.Name, c.Age, c.Gender, c.MotherTongue, c.Location)
	}
}
