package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/agent"
)

// console reads operator input line by line.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// prompt prints question and returns the trimmed answer. EOF yields "".
func (c *console) prompt(question string) string {
	fmt.Fprint(c.out, question)
	answer, _ := c.in.ReadString('\n')
	return strings.TrimSpace(answer)
}

func (c *console) askYesNo(question string) bool {
	answer := strings.ToLower(c.prompt(question + " [y/N]: "))
	return answer == "y" || answer == "yes"
}

// approver asks the operator about each gated tool call.
//
//	a      approve
//	m      modify (prompts for replacement JSON arguments)
//	r      reject (prompts for an optional reason)
//
// Anything else, including EOF, rejects with the default reason.
func (c *console) approver() agent.ApproverFunc {
	return func(ctx context.Context, call ai.ToolCall) agent.Decision {
		fmt.Fprintf(c.out, "\n%s wants to call %s\n", ancli.ColoredMessage(ancli.CYAN, "agent"), call.Name)
		fmt.Fprintf(c.out, "  arguments: %s\n", call.Arguments)

		switch strings.ToLower(c.prompt("[a]pprove, [m]odify or [r]eject? ")) {
		case "a", "approve", "y", "yes":
			return agent.Approve()
		case "m", "modify":
			args := c.prompt("new arguments (JSON): ")
			if !json.Valid([]byte(args)) {
				ancli.PrintWarn("not valid JSON, rejecting\n")
				return agent.Reject("operator supplied invalid arguments")
			}
			return agent.Modify(args)
		case "r", "reject":
			return agent.Reject(c.prompt("reason (optional): "))
		default:
			return agent.Reject("")
		}
	}
}

// report prints the outcome of a run.
func report(res *agent.Result) {
	if res.Accepted() {
		ancli.PrintOK(fmt.Sprintf("accepted after %d steps\n", res.Steps))
		fmt.Println(res.Output)
	} else {
		ancli.PrintErr(fmt.Sprintf("%v\n", res.Err()))
	}
	ancli.PrintOK(fmt.Sprintf("tokens: %d in, %d out, cost $%s\n",
		res.Usage.InputTokens, res.Usage.OutputTokens, res.Cost.StringFixed(6)))
}
