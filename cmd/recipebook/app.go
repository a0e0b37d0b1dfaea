package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/viewer"
)

// screen is the part of the display the REPL writes to.
type screen interface {
	InputChan() <-chan string
	ShowView(v viewer.View)
	PrintChat(text string)
	PrintHeading(text string)
	PrintInstruction(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	Println(a ...interface{})
}

type viewerApp struct {
	engine *viewer.Engine
	parser domain.EventParser
	log    *logger.Logger
	ui     screen
}

func (a *viewerApp) run(ctx context.Context) {
	if err := a.engine.Start(ctx); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not load the recipe list: %v", err))
	}
	a.ui.ShowView(a.engine.View())
	a.ui.PrintChat("Toggle tags with 'tag <name>', open a recipe by number. Type 'help' for commands.")

	uiCh := a.ui.InputChan()
	results := a.engine.Results()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-results:
			a.detailLoaded(ctx, ev)
		case input, ok := <-uiCh:
			if !ok {
				return
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			ev, err := a.parser.Parse(ctx, input)
			if err != nil {
				a.log.Error("parsing input: %v", err)
				continue
			}
			a.log.Debug("event: %s (payload=%q index=%d)", ev.Type, ev.Payload, ev.Index)
			if !a.handle(ctx, *ev) {
				return
			}
		}
	}
}

// handle applies one typed command. It returns false when the user quits.
func (a *viewerApp) handle(ctx context.Context, ev domain.Event) bool {
	switch ev.Type {
	case domain.EventQuit:
		a.ui.PrintChat("Bye.")
		return false
	case domain.EventHelp:
		a.showHelp()
		return true
	case domain.EventUnknown:
		a.ui.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", ev.Payload))
		return true
	case domain.EventShowList:
		v := a.engine.View()
		v.Screen = viewer.ScreenList
		a.ui.ShowView(v)
		return true
	}

	v, err := a.engine.Dispatch(ctx, ev)
	if err != nil {
		a.explain(err)
		return true
	}

	if ev.Type == domain.EventOpenRecipe && v.Loading != "" {
		a.ui.PrintHint("Loading " + v.Loading + "...")
		return true
	}
	a.ui.ShowView(v)
	return true
}

// detailLoaded applies a finished fetch. Results for a recipe the user has
// since moved away from only warm the cache.
func (a *viewerApp) detailLoaded(ctx context.Context, ev domain.Event) {
	current := a.engine.State().Pending == ev.Payload
	v, err := a.engine.Dispatch(ctx, ev)
	if !current {
		return
	}
	if err != nil {
		a.explain(err)
		return
	}
	a.ui.ShowView(v)
}

// explain turns a recovered error into a user-facing line.
func (a *viewerApp) explain(err error) {
	switch {
	case errors.Is(err, domain.ErrNoRecipe):
		a.ui.PrintHint("Open a recipe first.")
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrMalformed):
		a.ui.PrintUrgent(fmt.Sprintf("Could not load that recipe: %v", err))
	case errors.Is(err, domain.ErrNotFound):
		a.ui.PrintHint(fmt.Sprintf("Not found: %v", err))
	default:
		a.ui.PrintUrgent(err.Error())
	}
}

func (a *viewerApp) showHelp() {
	a.ui.PrintHeading("Browsing:")
	a.ui.PrintInstruction("  list / ls          Show the tag palette and matching recipes")
	a.ui.PrintInstruction("  tag <name> / #name Toggle a tag filter (recipes must carry every active tag)")
	a.ui.PrintInstruction("  clear              Clear every active tag")
	a.ui.PrintInstruction("  1, 2, 3...         Open a recipe by its number in the list")
	a.ui.PrintInstruction("  open <id>          Open a recipe by identifier")
	a.ui.Println("")
	a.ui.PrintHeading("Scaling:")
	a.ui.PrintInstruction("  servings <n>       Rescale every ingredient from the recipe's servings")
	a.ui.PrintInstruction("  set <i> <qty>      Set ingredient i and scale the others to match")
	a.ui.PrintInstruction("  <i> = <qty>        Same as set")
	a.ui.Println("")
	a.ui.PrintInstruction("  back               Close the open recipe")
	a.ui.PrintInstruction("  help               Show this message")
	a.ui.PrintInstruction("  quit / exit        Exit")
}
