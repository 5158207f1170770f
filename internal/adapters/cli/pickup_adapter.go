package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/example/pickup/internal/core/transfer"
	"github.com/example/pickup/internal/ports/primary"
)

// PickupAdapter is a thin adapter that translates CLI operations to
// PickupService and AgentService calls.
type PickupAdapter struct {
	pickups primary.PickupService
	agents  primary.AgentService
	out     io.Writer
	now     func() time.Time
}

// NewPickupAdapter creates a new PickupAdapter with the given services.
func NewPickupAdapter(pickups primary.PickupService, agents primary.AgentService, out io.Writer) *PickupAdapter {
	return &PickupAdapter{
		pickups: pickups,
		agents:  agents,
		out:     out,
		now:     time.Now,
	}
}

// Agents lists payout agents.
func (a *PickupAdapter) Agents(ctx context.Context) ([]*primary.Agent, error) {
	agents, err := a.agents.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	if len(agents) == 0 {
		fmt.Fprintln(a.out, "No payout agents configured.")
		return agents, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tDISTANCE\tHOURS\tSTATUS")
	fmt.Fprintln(w, "--\t----\t-------\t--------\t-----\t------")

	for _, agent := range agents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			agent.ID,
			agent.Name,
			agent.Address,
			agent.Distance,
			agent.Hours,
			openLabel(agent.Open),
		)
	}

	w.Flush()
	return agents, nil
}

// Quote prints the fee breakdown for amount.
func (a *PickupAdapter) Quote(ctx context.Context, amount string) (*primary.FeeQuote, error) {
	quote, err := a.agents.Quote(ctx, amount)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "You send:              $%.2f\n", quote.Amount)
	fmt.Fprintf(a.out, "Fee (%.0f%%):              $%.2f\n", quote.Rate*100, quote.Fee)
	fmt.Fprintf(a.out, "Cash to be received:   $%.2f\n", quote.Received)

	return quote, nil
}

// Send submits a pickup and blocks until it leaves processing.
// On success the proof QR code is printed.
func (a *PickupAdapter) Send(ctx context.Context, agentID, amount string) (*primary.PickupStatus, error) {
	status, err := a.pickups.Submit(ctx, primary.SubmitPickupRequest{
		AgentID: agentID,
		Amount:  amount,
	})
	if err != nil {
		if status != nil && status.Error != "" {
			fmt.Fprintf(a.out, "%s %s\n", color.RedString("✗"), status.Error)
		}
		return status, err
	}

	if status.State == primary.PickupStateProcessing {
		ref := ""
		if status.Request != nil {
			ref = status.Request.TransferRef
		}
		fmt.Fprintf(a.out, "%s Transfer %s submitted, waiting for settlement...\n", color.YellowString("⏳"), ref)

		status, err = a.pickups.Wait(ctx)
		if err != nil {
			return status, fmt.Errorf("stopped waiting for settlement: %w", err)
		}
	}

	switch status.State {
	case primary.PickupStateSuccess:
		if transfer.Outcome(status.Outcome).Presumed() {
			fmt.Fprintf(a.out, "%s Settlement not confirmed before the deadline; treated as successful\n", color.YellowString("⚠"))
		}
		fmt.Fprintf(a.out, "%s Cash pickup ready\n", color.GreenString("✓"))
		if status.Record != nil {
			a.printRecord(status.Record)
		}
		return status, nil
	case primary.PickupStateError:
		fmt.Fprintf(a.out, "%s Transfer failed: %s\n", color.RedString("✗"), status.Error)
		return status, errors.New("transfer failed")
	default:
		fmt.Fprintf(a.out, "Transfer ended in state %s\n", status.State)
		return status, nil
	}
}

// List lists completed pickups, most recent first.
func (a *PickupAdapter) List(ctx context.Context) ([]*primary.CompletedPickup, error) {
	pickups, err := a.pickups.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickups: %w", err)
	}

	if len(pickups) == 0 {
		fmt.Fprintln(a.out, "No completed pickups.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Send your first one:")
		fmt.Fprintln(a.out, "  pickup send --agent 1 --amount 20")
		return pickups, nil
	}

	now := a.now()
	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tAGENT\tAMOUNT\tWHEN")
	fmt.Fprintln(w, "--\t-----\t------\t----")

	for _, p := range pickups {
		agentName := ""
		if p.Agent != nil {
			agentName = p.Agent.Name
		}
		fmt.Fprintf(w, "%s\t%s\t$%s\t%s\n",
			shortRef(p.ID),
			agentName,
			transfer.FormatAmount(p.Amount),
			RelativeAge(p.CreatedAt, now),
		)
	}

	w.Flush()
	return pickups, nil
}

// Show displays one completed pickup with its QR code.
func (a *PickupAdapter) Show(ctx context.Context, id string) (*primary.CompletedPickup, error) {
	pickup, err := a.pickups.GetCompleted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get pickup: %w", err)
	}

	a.printRecord(pickup)
	return pickup, nil
}

func (a *PickupAdapter) printRecord(p *primary.CompletedPickup) {
	fmt.Fprintf(a.out, "\nPickup: %s\n", p.ID)
	if p.Agent != nil {
		fmt.Fprintf(a.out, "Agent:   %s\n", p.Agent.Name)
		fmt.Fprintf(a.out, "Address: %s\n", p.Agent.Address)
	}
	fmt.Fprintf(a.out, "Amount:  $%s\n", transfer.FormatAmount(p.Amount))
	fmt.Fprintf(a.out, "Created: %s (%s)\n", p.CreatedAt.Local().Format("2006-01-02 15:04"), RelativeAge(p.CreatedAt, a.now()))
	fmt.Fprintln(a.out)

	qr, err := RenderQR(p.ProofPayload)
	if err != nil {
		fmt.Fprintf(a.out, "(QR code unavailable: %v)\n", err)
	} else {
		fmt.Fprint(a.out, qr)
	}
	fmt.Fprintln(a.out, "Show this code to the agent to collect your cash.")
	fmt.Fprintln(a.out)
}

// RelativeAge renders how long ago t was, relative to now.
func RelativeAge(t, now time.Time) string {
	diff := now.Sub(t)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Local().Format("2006-01-02")
	}
}

func openLabel(open bool) string {
	if open {
		return color.GreenString("Open")
	}
	return color.RedString("Closed")
}

// shortRef abbreviates long hashes for table output.
func shortRef(ref string) string {
	runes := []rune(ref)
	if len(runes) <= 14 {
		return ref
	}
	return string(runes[:8]) + "…" + string(runes[len(runes)-4:])
}
