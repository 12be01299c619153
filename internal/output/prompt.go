package output

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/nudge-cli/nudge/internal/logging"
	"github.com/nudge-cli/nudge/internal/model"
	"github.com/nudge-cli/nudge/internal/parser"
	"github.com/nudge-cli/nudge/internal/scheduler"
)

var _ scheduler.Responder = PromptResponder{}

// PromptResponder asks for a response with an interactive select form.
// It is only safe where nothing else reads the terminal, such as a
// foreground "run --interactive".
type PromptResponder struct{}

// Respond shows the acknowledge/snooze/view choice. An aborted or failed
// prompt acknowledges.
func (PromptResponder) Respond(ctx context.Context, n model.Notification) model.Response {
	resp := model.ResponseAcknowledge
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Response]().
				Title(n.Subtitle).
				Description("What would you like to do?").
				Options(
					huh.NewOption("Acknowledge", model.ResponseAcknowledge),
					huh.NewOption("Snooze", model.ResponseSnooze),
					huh.NewOption("View details", model.ResponseView),
				).
				Value(&resp),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if !errors.Is(err, huh.ErrUserAborted) {
			logging.Warn("response prompt failed", logging.KeyError, err)
		}
		return model.ResponseAcknowledge
	}
	return resp
}

// Confirm asks a yes/no question. It returns false when the prompt is
// aborted.
func Confirm(title, affirmative string) bool {
	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	return err == nil && ok
}

// EditPreferences edits p in place with an interactive form. p is left
// unchanged when the form is aborted or fails.
func EditPreferences(p *model.Preferences) error {
	snooze := parser.FormatDuration(p.SnoozeFor)
	eventOffset := parser.FormatDuration(p.EventOffset)
	title := p.ReminderTitle
	description := p.ReminderDescription
	reminderSound := p.ReminderSound
	taskSound := p.TaskSound
	repeat := p.Repeat.String()
	offsets := slices.Clone(p.RingOffsets)

	presets := model.PresetOffsets()
	for _, off := range offsets {
		if !slices.Contains(presets, off) {
			presets = append(presets, off)
		}
	}
	slices.SortFunc(presets, func(a, b time.Duration) int { return cmp.Compare(b, a) })
	repeats := []string{"never", "minute", "daily", "weekly", "monthly", "yearly"}
	if !slices.Contains(repeats, repeat) {
		repeats = append(repeats, repeat)
	}

	options := make([]huh.Option[time.Duration], len(presets))
	for i, d := range presets {
		options[i] = huh.NewOption(parser.FormatDuration(d)+" before", d)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Snooze for").
				Description("How long a snoozed alert waits").
				Value(&snooze).
				Validate(validateDuration),
			huh.NewMultiSelect[time.Duration]().
				Title("Ring offsets").
				Description("When new reminders ring before their event").
				Options(options...).
				Value(&offsets),
			huh.NewInput().
				Title("Event offset").
				Description("Default event time of a new reminder, from now").
				Value(&eventOffset).
				Validate(validateDuration),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder title").
				Value(&title).
				Validate(validateRequired("Title")),
			huh.NewText().
				Title("Reminder description").
				Value(&description),
			huh.NewSelect[string]().
				Title("Repeat").
				Options(huh.NewOptions(repeats...)...).
				Value(&repeat),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Reminder sound").
				Description("File path or name under the sounds directory; empty rings the bell").
				Value(&reminderSound),
			huh.NewInput().
				Title("Task sound").
				Value(&taskSound),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	next := p.Clone()
	next.SnoozeFor, _ = parser.ParseDuration(snooze)
	next.EventOffset, _ = parser.ParseDuration(eventOffset)
	next.RingOffsets = offsets
	next.ReminderTitle = title
	next.ReminderDescription = description
	next.ReminderSound = reminderSound
	next.TaskSound = taskSound
	if r, err := parser.ParseRepeat(repeat); err == nil {
		next.Repeat = r
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = *next
	return nil
}

func validateDuration(s string) error {
	_, err := parser.ParseDuration(s)
	return err
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
