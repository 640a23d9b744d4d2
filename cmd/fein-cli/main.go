// Package main is an interactive terminal client for the Fein API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/feinhq/fein/internal/httputil"
)

type cli struct {
	client *httputil.Client
	in     *bufio.Scanner
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "Base URL of the Fein API")
	flag.Parse()

	if v := os.Getenv("FEIN_URL"); v != "" && *baseURL == "http://localhost:8000" {
		*baseURL = v
	}

	c := &cli{
		client: httputil.NewClient(httputil.ClientConfig{BaseURL: *baseURL}),
		in:     bufio.NewScanner(os.Stdin),
	}
	c.mainMenu()
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *cli) promptFloat(label string) (float64, bool) {
	raw := c.prompt(label)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Println("Invalid number.")
		return 0, false
	}
	return v, true
}

func (c *cli) mainMenu() {
	for {
		fmt.Println("\nMain Menu")
		fmt.Println("1. Register")
		fmt.Println("2. Login")
		fmt.Println("3. Exit")

		switch c.prompt("Choose an option: ") {
		case "1":
			c.register()
		case "2":
			if c.login() {
				c.userMenu()
			}
		case "3":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func (c *cli) register() {
	fmt.Println("\nRegister")
	payload := map[string]string{
		"user_name": c.prompt("Enter your username: "),
		"email":     c.prompt("Enter your email: "),
		"password":  c.prompt("Enter your password: "),
	}

	resp, err := c.client.Post(c.ctx(), "/auth/register", payload)
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}
	if err := httputil.DecodeResponse(resp, nil); err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}
	fmt.Println("Registration successful.")
}

func (c *cli) login() bool {
	fmt.Println("\nLog in")
	payload := map[string]string{
		"email":    c.prompt("Enter your email: "),
		"password": c.prompt("Enter your password: "),
	}

	resp, err := c.client.Post(c.ctx(), "/auth/login", payload)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return false
	}
	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := httputil.DecodeResponse(resp, &result); err != nil {
		fmt.Println("Invalid login credentials.")
		return false
	}
	c.client.SetToken(result.AccessToken)
	fmt.Println("Log in successful.")
	return true
}

func (c *cli) userMenu() {
	for {
		fmt.Println("\nUser Menu")
		fmt.Println("1. Add Transaction Account")
		fmt.Println("2. View Transaction Accounts")
		fmt.Println("3. Add Transaction")
		fmt.Println("4. View Transactions")
		fmt.Println("5. Modify Transaction")
		fmt.Println("6. Delete Transaction")
		fmt.Println("7. Add Tag")
		fmt.Println("8. View Tags")
		fmt.Println("9. Assign Tag to Transaction")
		fmt.Println("10. View Transaction Tags")
		fmt.Println("11. View Reports")
		fmt.Println("12. View All Accounts (admin)")
		fmt.Println("13. Log Out")

		switch c.prompt("Choose an option: ") {
		case "1":
			c.addAccount()
		case "2":
			c.viewAccounts()
		case "3":
			c.addTransaction()
		case "4":
			c.viewTransactions()
		case "5":
			c.modifyTransaction()
		case "6":
			c.deleteTransaction()
		case "7":
			c.addTag()
		case "8":
			c.viewTags()
		case "9":
			c.assignTag()
		case "10":
			c.viewTransactionTags()
		case "11":
			c.viewReports()
		case "12":
			c.adminViewAllAccounts()
		case "13":
			fmt.Println("Logging out...")
			c.client.SetToken("")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

type accountView struct {
	ID      string  `json:"transaction_account_id"`
	Name    string  `json:"account_name"`
	Balance float64 `json:"balance"`
}

func (c *cli) addAccount() {
	fmt.Println("\nAdd Transaction Account")
	name := c.prompt("Enter account name: ")
	balance, _ := c.promptFloat("Enter balance: ")

	resp, err := c.client.Post(c.ctx(), "/accounts", map[string]interface{}{
		"account_name": name,
		"balance":      balance,
	})
	if err != nil {
		fmt.Printf("Failed to add transaction account: %v\n", err)
		return
	}
	var acct accountView
	if err := httputil.DecodeResponse(resp, &acct); err != nil {
		fmt.Printf("Failed to add transaction account: %v\n", err)
		return
	}
	fmt.Printf("Transaction account added with ID %s.\n", acct.ID)
}

func (c *cli) viewAccounts() {
	fmt.Println("\nTransaction Accounts")
	c.printAccounts("/accounts")
}

func (c *cli) adminViewAllAccounts() {
	fmt.Println("\nAll Transaction Accounts")
	c.printAccounts("/admin/accounts")
}

func (c *cli) printAccounts(path string) {
	resp, err := c.client.Get(c.ctx(), path)
	if err != nil {
		fmt.Printf("Failed to retrieve accounts: %v\n", err)
		return
	}
	var accounts []accountView
	if err := httputil.DecodeResponse(resp, &accounts); err != nil {
		fmt.Printf("Failed to retrieve accounts: %v\n", err)
		return
	}
	for _, a := range accounts {
		fmt.Printf("Account ID: %s, Name: %s, Balance: %.2f\n", a.ID, a.Name, a.Balance)
	}
}

func (c *cli) addTransaction() {
	fmt.Println("\nAdd Transaction")
	name := c.prompt("Enter transaction name: ")

	breakdowns := []map[string]interface{}{}
	for {
		acctID := c.prompt("Enter account ID for breakdown (blank to finish): ")
		if acctID == "" {
			break
		}
		earned, _ := c.promptFloat("Earned amount: ")
		spent, _ := c.promptFloat("Spent amount: ")
		breakdowns = append(breakdowns, map[string]interface{}{
			"transaction_account_id": acctID,
			"earned_amount":          earned,
			"spent_amount":           spent,
		})
	}

	payload := map[string]interface{}{
		"transaction_name": name,
		"breakdowns":       breakdowns,
	}
	if raw := c.prompt("Enter date (YYYY-MM-DDTHH:MM:SSZ, blank for now): "); raw != "" {
		if _, err := time.Parse(time.RFC3339, raw); err != nil {
			fmt.Println("Invalid date, using the current time.")
		} else {
			payload["date"] = raw
		}
	}

	resp, err := c.client.Post(c.ctx(), "/transactions", payload)
	if err != nil {
		fmt.Printf("Failed to add transaction: %v\n", err)
		return
	}
	var created struct {
		Transaction struct {
			ID        string  `json:"transaction_id"`
			NetAmount float64 `json:"net_amount"`
		} `json:"transaction"`
	}
	if err := httputil.DecodeResponse(resp, &created); err != nil {
		fmt.Printf("Failed to add transaction: %v\n", err)
		return
	}
	fmt.Printf("Transaction %s added (net %.2f).\n", created.Transaction.ID, created.Transaction.NetAmount)
}

func (c *cli) viewTransactions() {
	fmt.Println("\nView Transactions")
	resp, err := c.client.Get(c.ctx(), "/transactions")
	if err != nil {
		fmt.Printf("Failed to retrieve transactions: %v\n", err)
		return
	}
	var transactions []struct {
		ID        string    `json:"transaction_id"`
		Name      string    `json:"transaction_name"`
		Amount    float64   `json:"amount"`
		NetAmount float64   `json:"net_amount"`
		Date      time.Time `json:"date"`
	}
	if err := httputil.DecodeResponse(resp, &transactions); err != nil {
		fmt.Printf("Failed to retrieve transactions: %v\n", err)
		return
	}
	for _, t := range transactions {
		fmt.Printf("Transaction ID: %s\n", t.ID)
		fmt.Printf("Transaction Name: %s\n", t.Name)
		fmt.Printf("Amount: %.2f\n", t.Amount)
		fmt.Printf("Net Amount: %.2f\n", t.NetAmount)
		fmt.Printf("Date: %s\n\n", t.Date.Format(time.RFC3339))
	}
}

func (c *cli) modifyTransaction() {
	fmt.Println("\nModify Transaction")
	id := c.prompt("Enter transaction ID to modify: ")

	data := map[string]interface{}{}
	if name := c.prompt("Enter new transaction name (or leave blank): "); name != "" {
		data["transaction_name"] = name
	}
	if v, ok := c.promptFloat("Enter new amount (or leave blank): "); ok {
		data["amount"] = v
	}
	if v, ok := c.promptFloat("Enter new net amount (or leave blank): "); ok {
		data["net_amount"] = v
	}
	if raw := c.prompt("Enter new date (YYYY-MM-DDTHH:MM:SSZ) (or leave blank): "); raw != "" {
		data["date"] = raw
	}

	resp, err := c.client.Put(c.ctx(), "/transactions/"+id, data)
	if err != nil {
		fmt.Printf("Failed to modify transaction: %v\n", err)
		return
	}
	if err := httputil.DecodeResponse(resp, nil); err != nil {
		fmt.Printf("Failed to modify transaction: %v\n", err)
		return
	}
	fmt.Println("Transaction modified successfully.")
}

func (c *cli) deleteTransaction() {
	fmt.Println("\nDelete Transaction")
	id := c.prompt("Enter transaction ID to delete: ")

	resp, err := c.client.Delete(c.ctx(), "/transactions/"+id)
	if err != nil {
		fmt.Printf("Failed to delete transaction: %v\n", err)
		return
	}
	if err := httputil.DecodeResponse(resp, nil); err != nil {
		fmt.Printf("Failed to delete transaction: %v\n", err)
		return
	}
	fmt.Println("Transaction deleted successfully.")
}

type tagView struct {
	ID   string `json:"tag_id"`
	Name string `json:"tag_name"`
}

func (c *cli) addTag() {
	fmt.Println("\nAdd Tag")
	name := c.prompt("Enter tag name: ")

	resp, err := c.client.Post(c.ctx(), "/tags", map[string]string{"tag_name": name})
	if err != nil {
		fmt.Printf("Failed to add tag: %v\n", err)
		return
	}
	var tag tagView
	if err := httputil.DecodeResponse(resp, &tag); err != nil {
		fmt.Printf("Failed to add tag: %v\n", err)
		return
	}
	fmt.Printf("Tag added with ID %s.\n", tag.ID)
}

func (c *cli) viewTags() {
	fmt.Println("\nView Tags")
	resp, err := c.client.Get(c.ctx(), "/tags")
	if err != nil {
		fmt.Printf("Error retrieving tags: %v\n", err)
		return
	}
	var tags []tagView
	if err := httputil.DecodeResponse(resp, &tags); err != nil {
		fmt.Printf("Error retrieving tags: %v\n", err)
		return
	}
	for _, tag := range tags {
		fmt.Printf("ID: %s, Name: %s\n", tag.ID, tag.Name)
	}
}

func (c *cli) assignTag() {
	fmt.Println("\nAssign Tag to Transaction")
	payload := map[string]string{
		"transaction_id": c.prompt("Enter transaction ID: "),
		"tag_id":         c.prompt("Enter tag ID: "),
	}

	resp, err := c.client.Post(c.ctx(), "/tags/assign", payload)
	if err != nil {
		fmt.Printf("Failed to assign tag: %v\n", err)
		return
	}
	if err := httputil.DecodeResponse(resp, nil); err != nil {
		fmt.Printf("Failed to assign tag: %v\n", err)
		return
	}
	fmt.Println("Tag assigned successfully.")
}

func (c *cli) viewTransactionTags() {
	fmt.Println("\nView Transaction Tags")
	id := c.prompt("Enter transaction ID to view its tags: ")

	resp, err := c.client.Get(c.ctx(), "/tags/transaction/"+id)
	if err != nil {
		fmt.Printf("Error retrieving tags for transaction: %v\n", err)
		return
	}
	var tags []tagView
	if err := httputil.DecodeResponse(resp, &tags); err != nil {
		fmt.Printf("Error retrieving tags for transaction: %v\n", err)
		return
	}
	for _, tag := range tags {
		fmt.Printf("ID: %s, Name: %s\n", tag.ID, tag.Name)
	}
}

func (c *cli) viewReports() {
	fmt.Println("\nView Reports")
	resp, err := c.client.Get(c.ctx(), "/reports")
	if err != nil {
		fmt.Printf("Error retrieving reports: %v\n", err)
		return
	}
	var summaries []struct {
		AccountName string  `json:"account_name"`
		Earned      float64 `json:"earned"`
		Spent       float64 `json:"spent"`
		Net         float64 `json:"net"`
	}
	if err := httputil.DecodeResponse(resp, &summaries); err != nil {
		fmt.Printf("Error retrieving reports: %v\n", err)
		return
	}
	for _, s := range summaries {
		fmt.Printf("%s: earned %.2f, spent %.2f, net %.2f\n", s.AccountName, s.Earned, s.Spent, s.Net)
	}
}

func (c *cli) ctx() context.Context {
	return context.Background()
}
