package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kjcheon2024/shop-orders-sub000/client"
	"github.com/kjcheon2024/shop-orders-sub000/flow"
	"github.com/kjcheon2024/shop-orders-sub000/utils"
)

// Line-mode frontend for the ordering portal. Company mode drives the
// order flows; admin mode drives the console tabs.

func main() {
	server := flag.String("server", envOr("PORTAL_URL", "http://localhost:8080"), "portal base URL")
	admin := flag.Bool("admin", false, "start in admin console mode")
	flag.Parse()

	utils.InitLogger()

	api := client.New(*server)
	in := bufio.NewScanner(os.Stdin)

	if *admin {
		runAdmin(api, in)
		return
	}
	runCompany(api, in)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

type printNotifier struct{}

func (printNotifier) Info(msg string)    { fmt.Println("  " + msg) }
func (printNotifier) Success(msg string) { fmt.Println("  ✓ " + msg) }
func (printNotifier) Error(msg string)   { fmt.Println("  ! " + msg) }

// ---- company mode ----

func runCompany(api *client.Client, in *bufio.Scanner) {
	ctx := context.Background()
	session := flow.NewSession(api, printNotifier{})
	preview := flow.NewPasswordPreview(api)
	preview.OnResult = func(res *client.LoginResult, err error) {
		if err != nil || res == nil {
			return
		}
		fmt.Printf("  -> %s (%d items)\n", res.CompanyName, len(res.Items))
	}

	password := prompt(in, "password: ")
	if password == "" {
		return
	}
	preview.Type(password)
	preview.Flush()

	view, err := preview.Login(ctx, session, password)
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}
	fmt.Printf("logged in as %s\n", session.CompanyName)

	switch view {
	case flow.ViewBlocked:
		fmt.Println("ordering is blocked:", session.BlockReason)
	case flow.ViewRestricted:
		fmt.Println("ordering is closed during restricted hours (orders can still be viewed)")
	}

	showNotices(ctx, api, session, in)

	orders := flow.NewOrderFlow(session, api, printNotifier{})
	orders.SuccessDelay = 0
	orders.AfterSuccess = func() {
		if today, err := orders.LoadToday(ctx); err == nil {
			printToday(today)
		}
	}

	for {
		switch cmd := prompt(in, "> "); cmd {
		case "order":
			composeOrder(ctx, orders, session, in)
		case "today":
			today, err := orders.LoadToday(ctx)
			if err != nil {
				continue
			}
			printToday(today)
		case "edit":
			editToday(ctx, orders, in)
		case "history":
			copyFromHistory(ctx, api, orders, session, in)
		case "requests":
			showItemRequests(ctx, api, session)
		case "logout", "quit", "exit", "":
			preview.Stop()
			session.Logout()
			fmt.Println("bye")
			return
		default:
			fmt.Println("commands: order, today, edit, history, requests, logout")
		}
	}
}

func showNotices(ctx context.Context, api *client.Client, session *flow.Session, in *bufio.Scanner) {
	seq := flow.NewNoticeSequence(api, session.CompanyName)
	if err := seq.Load(ctx); err != nil {
		return
	}
	for {
		notice, ok := seq.Current()
		if !ok {
			break
		}
		if notice.Title != "" {
			fmt.Printf("[notice] %s\n%s\n", notice.Title, notice.Message)
		} else {
			fmt.Printf("[notice] %s\n", notice.Message)
		}
		answer := prompt(in, "confirm (y = confirm, d = don't show again, x = close): ")
		switch answer {
		case "d":
			_ = seq.Confirm(ctx, true)
		case "x":
			seq.Dismiss()
		default:
			_ = seq.Confirm(ctx, false)
		}
	}

	banners, err := flow.LoadBanner(ctx, api, session.CompanyName)
	if err == nil {
		for _, b := range banners {
			fmt.Printf("[for you] %s\n", b.Message)
		}
	}
}

func composeOrder(ctx context.Context, orders *flow.OrderFlow, session *flow.Session, in *bufio.Scanner) {
	if err := orders.Begin(ctx); err != nil {
		return
	}

	fmt.Println("assigned items:")
	for i, it := range session.Items {
		fmt.Printf("  %d) %s  %s\n", i+1, it.Name, it.Description)
	}
	picks := prompt(in, "select item numbers (comma separated): ")
	for _, raw := range strings.Split(picks, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 1 || idx > len(session.Items) {
			continue
		}
		_ = orders.ToggleItem(session.Items[idx-1].Name)
	}

	if err := orders.ProceedToQuantities(ctx); err != nil {
		orders.Cancel()
		return
	}
	for _, name := range orders.Selected() {
		_ = orders.SetQuantity(name, prompt(in, fmt.Sprintf("quantity for %s: ", name)))
	}
	if err := orders.ProceedToConfirm(ctx); err != nil {
		orders.Cancel()
		return
	}

	fmt.Println("confirm order:")
	for _, line := range orders.Draft() {
		fmt.Printf("  %s x %d\n", line.ItemName, line.Quantity)
	}
	if prompt(in, "submit? (y/n): ") != "y" {
		orders.Cancel()
		return
	}
	_ = orders.Submit(ctx)
}

func printToday(today *client.TodayOrder) {
	if !today.HasOrder {
		fmt.Println("no order for today")
		return
	}
	fmt.Printf("today's order (%s):\n", today.OrderDate)
	for _, line := range today.Items {
		fmt.Printf("  %s x %d\n", line.ItemName, line.Quantity)
	}
	if !today.CanModify {
		fmt.Println("  (locked: " + today.Reason + ")")
	}
}

func editToday(ctx context.Context, orders *flow.OrderFlow, in *bufio.Scanner) {
	if _, err := orders.LoadToday(ctx); err != nil {
		return
	}
	if err := orders.StartEdit(); err != nil {
		fmt.Println(" ", err)
		return
	}

	for {
		for i, line := range orders.CurrentLines() {
			fmt.Printf("  %d) %s x %d\n", i+1, line.ItemName, line.Quantity)
		}
		switch cmd := prompt(in, "edit (qty/add/del/save/cancel): "); cmd {
		case "qty":
			name := prompt(in, "item name: ")
			qty, _ := strconv.Atoi(prompt(in, "new quantity: "))
			if err := orders.SetLineQuantity(name, qty); err != nil {
				fmt.Println(" ", err)
			}
		case "add":
			fmt.Println("available:")
			for _, it := range orders.AvailableToAdd() {
				fmt.Printf("  - %s\n", it.Name)
			}
			name := prompt(in, "item name: ")
			qty, _ := strconv.Atoi(prompt(in, "quantity: "))
			if err := orders.AddLine(name, qty); err != nil {
				fmt.Println(" ", err)
			}
		case "del":
			name := prompt(in, "item name: ")
			confirmed := prompt(in, "really delete? (y/n): ") == "y"
			if err := orders.RemoveLine(name, confirmed); err != nil {
				fmt.Println(" ", err)
			}
		case "save":
			_ = orders.SaveChanges(ctx)
			return
		case "cancel":
			_ = orders.CancelEdit(ctx)
			return
		default:
			fmt.Println("commands: qty, add, del, save, cancel")
		}
	}
}

func copyFromHistory(ctx context.Context, api *client.Client, orders *flow.OrderFlow, session *flow.Session, in *bufio.Scanner) {
	history, err := api.GetRecentOrderHistory(ctx, session.CompanyName, 14)
	if err != nil || len(history) == 0 {
		fmt.Println("no recent orders")
		return
	}
	for i, day := range history {
		fmt.Printf("  %d) %s (%d lines)\n", i+1, day.OrderDate, len(day.Items))
	}
	if !orders.CanCopyFromHistory() {
		fmt.Println("  (copy disabled: ordering is blocked)")
		return
	}
	idx, err := strconv.Atoi(prompt(in, "copy which day? "))
	if err != nil || idx < 1 || idx > len(history) {
		return
	}
	if err := orders.CopyFromHistory(history[idx-1]); err != nil {
		fmt.Println(" ", err)
		return
	}
	editToday(ctx, orders, in)
}

func showItemRequests(ctx context.Context, api *client.Client, session *flow.Session) {
	requests, err := api.GetCompanyItemRequestStatus(ctx, session.CompanyName)
	if err != nil {
		return
	}
	for _, r := range requests {
		fmt.Printf("  %s [%s]\n", r.ItemName, r.Status)
	}
}

// ---- admin mode ----

func runAdmin(api *client.Client, in *bufio.Scanner) {
	ctx := context.Background()

	username := prompt(in, "admin username: ")
	password := prompt(in, "admin password: ")
	if err := api.AdminLogin(ctx, username, password); err != nil {
		fmt.Println("login failed:", err)
		return
	}
	fmt.Println("admin console ready")

	tabs := flow.NewTabRegistry()
	tabs.Register("companies", func(ctx context.Context) error {
		companies, err := api.GetAllCompaniesWithStatus(ctx)
		if err != nil {
			return err
		}
		for _, co := range companies {
			marker := " "
			if co.OrderBlocked {
				marker = "B"
			}
			fmt.Printf("  [%d] %-20s %-9s %s ordered_today=%v\n",
				co.CompanyID, co.CompanyName, co.Status, marker, co.OrderedToday)
		}
		return nil
	})
	tabs.Register("orders", func(ctx context.Context) error {
		date := prompt(in, "date (YYYY-MM-DD, empty = today): ")
		orders, err := api.GetOrdersByDate(ctx, date)
		if err != nil {
			return err
		}
		for _, o := range orders {
			fmt.Printf("  %s (%s):\n", o.CompanyName, o.OrderDate)
			for _, line := range o.Items {
				fmt.Printf("    %s x %d\n", line.ItemName, line.Quantity)
			}
		}
		return nil
	})
	tabs.Register("notices", func(ctx context.Context) error {
		notices, err := api.GetNoticeList(ctx)
		if err != nil {
			return err
		}
		for _, n := range notices {
			fmt.Printf("  %s [%s] active=%v %s\n", n.NoticeID, n.Scope, n.Active, n.Message)
		}
		return nil
	})
	tabs.Register("groups", func(ctx context.Context) error {
		groups, err := api.GetItemGroups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			fmt.Printf("  [%d] %s: %s\n", g.GroupID, g.Name, strings.Join(g.ItemNames, ", "))
		}
		return nil
	})
	tabs.Register("sheets", func(ctx context.Context) error {
		configs, err := api.GetSheetConfigs(ctx)
		if err != nil {
			return err
		}
		for _, cfg := range configs {
			fmt.Printf("  [%d] %s active=%v %s\n", cfg.ID, cfg.Name, cfg.Active, cfg.SheetURL)
		}
		return nil
	})

	for {
		cmd := prompt(in, "admin> ")
		parts := strings.Fields(cmd)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "tab":
			if len(parts) < 2 {
				fmt.Println("tabs:", strings.Join(tabs.Tabs(), ", "))
				continue
			}
			if err := tabs.Show(ctx, parts[1]); err != nil {
				fmt.Println(" ", err)
			}
		case "approve":
			id := parseID(parts, 1)
			group := parseID(parts, 2)
			if err := api.ApproveWithSettings(ctx, id, group); err != nil {
				fmt.Println(" ", err)
			}
		case "reject":
			id := parseID(parts, 1)
			reason := prompt(in, "rejection reason (required): ")
			if reason == "" {
				fmt.Println("  a reason is required")
				continue
			}
			if err := api.RejectCompany(ctx, id, reason); err != nil {
				fmt.Println(" ", err)
			}
		case "block":
			id := parseID(parts, 1)
			reason := prompt(in, "block reason (required when blocking): ")
			status, err := api.ToggleCompanyOrderBlock(ctx, id, reason)
			if err != nil {
				fmt.Println(" ", err)
				continue
			}
			fmt.Printf("  blocked=%v\n", status.Blocked)
		case "quit", "exit":
			if err := api.AdminLogout(ctx); err != nil {
				fmt.Println(" ", err)
			}
			return
		default:
			fmt.Println("commands: tab <id>, approve <companyId> [groupId], reject <companyId>, block <companyId>, quit")
		}
	}
}

func parseID(parts []string, idx int) uint {
	if idx >= len(parts) {
		return 0
	}
	id, err := strconv.ParseUint(parts[idx], 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
