// Package console implements the interactive line-oriented menu.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kilianp07/orderbot/core/controller"
	"github.com/kilianp07/orderbot/core/model"
)

// Controller is the subset of controller.Controller driven by the menu.
type Controller interface {
	SubmitOrder(class model.OrderClass, duration time.Duration) model.Order
	AddBot() model.Bot
	RemoveBot() *model.Bot
	Snapshot() controller.Snapshot
}

type action struct {
	label string
	run   func(c *Console)
}

var menu = []action{
	{"Display", func(*Console) {}},
	{"New Normal Order", func(c *Console) {
		o := c.ctrl.SubmitOrder(model.ClassNormal, 0)
		c.printf("created normal order #%d\n", o.ID)
	}},
	{"New VIP Order", func(c *Console) {
		o := c.ctrl.SubmitOrder(model.ClassVIP, 0)
		c.printf("created VIP order #%d\n", o.ID)
	}},
	{"+ Bot", func(c *Console) {
		b := c.ctrl.AddBot()
		c.printf("added bot %d\n", b.ID)
	}},
	{"- Bot", func(c *Console) {
		b := c.ctrl.RemoveBot()
		if b == nil {
			c.printf("no bot to remove\n")
			return
		}
		c.printf("removed bot %d\n", b.ID)
	}},
	{"Exit", nil},
}

// Console reads menu choices from in and writes status tables to out.
type Console struct {
	ctrl Controller
	in   *bufio.Scanner
	out  io.Writer
}

// New creates a Console.
func New(ctrl Controller, in io.Reader, out io.Writer) *Console {
	return &Console{ctrl: ctrl, in: bufio.NewScanner(in), out: out}
}

// Run shows the menu until Exit is chosen, the input ends or ctx is
// canceled. Cancellation is only observed between two choices.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.printMenu()
		if !c.in.Scan() {
			return c.in.Err()
		}
		choice := strings.TrimSpace(c.in.Text())
		a, ok := lookup(choice)
		if !ok {
			c.printf("invalid choice %q\n", choice)
			continue
		}
		if a.run == nil {
			return nil
		}
		a.run(c)
		c.printf("%s", Render(c.ctrl.Snapshot()))
	}
}

func lookup(choice string) (action, bool) {
	for i, a := range menu {
		if choice == fmt.Sprint(i+1) || strings.EqualFold(choice, a.label) {
			return a, true
		}
	}
	return action{}, false
}

func (c *Console) printMenu() {
	var b strings.Builder
	b.WriteString(titleStyle.Render("--- MAIN MENU ---"))
	b.WriteByte('\n')
	for i, a := range menu {
		fmt.Fprintf(&b, "  %d) %s\n", i+1, a.label)
	}
	b.WriteString("> ")
	c.printf("%s", b.String())
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
