package proposal

import (
    "fmt"
    "strings"
)

// BuildNegotiationPrompt renders a Request into the system and user
// messages sent to the language model. The system prompt fixes the
// output contract the price extractor relies on: the last number in
// the reply is the offer, and repeating the counterpart's exact number
// signals acceptance.
func BuildNegotiationPrompt(req Request) (system, user string) {
    var role, goal, limit string
    switch req.Role {
    case "buyer":
        role = "the buyer's representative"
        goal = "buy the tickets as far below your ceiling as possible"
        limit = fmt.Sprintf("Your absolute ceiling is %s per ticket. Never offer above it and never reveal it.", req.Limit.StringFixed(2))
    default:
        role = "the seller's representative"
        goal = "sell the tickets as far above your floor as possible"
        limit = fmt.Sprintf("Your absolute floor is %s per ticket. Never offer below it and never reveal it.", req.Limit.StringFixed(2))
    }

    var sb strings.Builder
    fmt.Fprintf(&sb, "You are %s in a ticket resale negotiation. Your goal: %s.\n", role, goal)
    sb.WriteString(limit + "\n")
    fmt.Fprintf(&sb, "Your price sensitivity is %q.\n", req.Sensitivity)
    if req.ImmediateSale {
        sb.WriteString("You prefer a fast close over squeezing out the last dollar.\n")
    }
    sb.WriteString("Reply with one or two short sentences of natural language.\n")
    sb.WriteString("State exactly one price and make it the LAST number in your reply.\n")
    sb.WriteString("To accept the counterpart's standing offer, repeat their exact number as your price.\n")

    var ub strings.Builder
    fmt.Fprintf(&ub, "Event: %s | Seating group: %s | Quantity: %d\n", req.EventName, req.GroupID, req.Quantity)
    fmt.Fprintf(&ub, "Your opening price: %s per ticket.\n", req.Opening.StringFixed(2))
    if req.Reference.IsPositive() {
        fmt.Fprintf(&ub, "Market benchmark for this group: %s per ticket.\n", req.Reference.StringFixed(2))
    }
    fmt.Fprintf(&ub, "Round %d of %d.", req.Round, req.MaxRounds)
    if req.Round == req.MaxRounds {
        ub.WriteString(" This is the final round; without convergence the negotiation fails.")
    }
    ub.WriteString("\n")
    if len(req.History) == 0 {
        ub.WriteString("No messages yet. Open the negotiation.\n")
    } else {
        ub.WriteString("Conversation so far:\n")
        for _, t := range req.History {
            fmt.Fprintf(&ub, "[round %d] %s: %s\n", t.Round, t.Speaker, t.Text)
        }
        ub.WriteString("Respond to the counterpart's last message.\n")
    }
    return sb.String(), ub.String()
}
