package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalwire/sigmond-holyguacamole/pkg/agent"
	"github.com/signalwire/sigmond-holyguacamole/pkg/agent/session"
	"github.com/signalwire/sigmond-holyguacamole/pkg/cli"
	"github.com/signalwire/sigmond-holyguacamole/pkg/flow"
	"github.com/signalwire/sigmond-holyguacamole/pkg/menu/match"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Interactive order console",
	Long: `Take an order from the terminal, one line per request.

Commands:
  add [qty] <item>       add an item ("add 2 beef tacos")
  remove [qty|all] <item>
  set <qty> <item>       change an item's quantity
  combo [type|both]      upgrade to a combo meal
  review | finalize | pay | done | cancel | new
  menu                   print the menu board
  quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := loadMenu(cfg)
		if err != nil {
			return err
		}

		d := agent.New(m, agent.WithMatcher(match.New(m, match.WithThreshold(cfg.MatchThreshold))))
		s := session.New("", m)
		styles := cli.NewStyles(cli.DefaultTheme)

		fmt.Println("Welcome to Holy Guacamole! What can I get started for you?")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Printf("[%s]> ", s.Phase)
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "quit" || line == "exit" {
				return nil
			}
			if line == "menu" {
				fmt.Println(cli.MenuBoard(m, styles))
				continue
			}

			op, rawArgs, err := parseRequest(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			out := d.Dispatch(op, rawArgs, s)
			fmt.Println(out.Say)
			fmt.Println(cli.Receipt(&out.Order, styles))
		}
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
}

// parseRequest turns a console line into an operation and its JSON
// arguments, the same shape the voice platform sends.
func parseRequest(line string) (flow.Op, []byte, error) {
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch verb {
	case "add":
		qty, item := splitQty(rest)
		return flow.OpAddItem, mustJSON(agent.AddItemArgs{ItemName: item, Quantity: qty}), nil
	case "remove", "rm":
		qty, item := splitQty(rest)
		return flow.OpRemoveItem, mustJSON(agent.RemoveItemArgs{ItemName: item, Quantity: qty}), nil
	case "set":
		qty, item := splitQty(rest)
		if item == rest {
			return "", nil, fmt.Errorf("usage: set <qty> <item>")
		}
		return flow.OpModifyQuantity, mustJSON(agent.ModifyQuantityArgs{ItemName: item, NewQuantity: qty}), nil
	case "combo", "upgrade":
		return flow.OpUpgradeCombo, mustJSON(agent.UpgradeComboArgs{ComboType: rest}), nil
	case "review":
		return flow.OpReviewOrder, nil, nil
	case "finalize", "checkout":
		return flow.OpFinalizeOrder, nil, nil
	case "pay":
		return flow.OpProcessPayment, nil, nil
	case "done", "complete":
		return flow.OpCompleteOrder, nil, nil
	case "cancel":
		return flow.OpCancelOrder, nil, nil
	case "new":
		return flow.OpNewOrder, nil, nil
	}
	return "", nil, fmt.Errorf("unknown command %q (try 'add 2 beef tacos')", verb)
}

// splitQty peels a leading quantity ("2 beef tacos" -> 2, "beef tacos").
// "all" means the whole line for remove.
func splitQty(s string) (int, string) {
	head, rest, ok := strings.Cut(s, " ")
	if !ok {
		return 0, s
	}
	if head == "all" {
		return -1, rest
	}
	if n, err := strconv.Atoi(head); err == nil {
		return n, rest
	}
	return 0, s
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
