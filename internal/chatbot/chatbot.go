package chatbot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
)

var ErrEmptyQuery = errors.New("query is required")

type Response struct {
	Response string      `json:"response"`
	Data     interface{} `json:"data"`
}

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AccountType string `json:"account_type"`
}

type Account struct {
	AccountNumber   string `json:"account_number"`
	Balance         string `json:"balance"`
	Status          string `json:"status"`
	LastTransaction string `json:"last_transaction"`
}

type Transaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance"`
}

// Directory is the reference data the assistant answers from.
type Directory struct {
	Customers    []Customer
	Accounts     []Account
	Transactions []Transaction
}

// ComplaintLookup resolves a complaint number such as CMP20260112ABCDEF01.
type ComplaintLookup func(ctx context.Context, number string) (models.Complaint, error)

type Options struct {
	Directory Directory
	Lookup    ComplaintLookup
	Evaluator *sla.Evaluator
	Seed      int64
}

type Bot struct {
	mu        sync.Mutex
	rng       *rand.Rand
	directory Directory
	lookup    ComplaintLookup
	evaluator *sla.Evaluator
}

var complaintNumberPattern = regexp.MustCompile(`(?i)\bCMP\d{8}[0-9A-F]{8}\b`)

var fallbackAnswers = []string{
	"I can look up customers, account balances, transactions, contact details and complaint SLAs.",
	"Try asking about: 'customer lookup', 'account balance', 'transaction history', or a complaint number.",
	"Which customer, account or complaint do you need information about?",
}

var suggestions = []string{
	"Find customer by email",
	"Check account balance for customer ID",
	"Show recent transactions",
	"Get customer contact information",
	"Check account status",
	"Lookup customer details",
	"Show transaction history",
	"SLA for complaint CMP<number>",
}

func Suggestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}

func New(options Options) *Bot {
	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	directory := options.Directory
	if len(directory.Customers) == 0 && len(directory.Accounts) == 0 && len(directory.Transactions) == 0 {
		directory = DemoDirectory()
	}
	evaluator := options.Evaluator
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.Options{})
	}
	return &Bot{
		rng:       rand.New(rand.NewSource(seed)),
		directory: directory,
		lookup:    options.Lookup,
		evaluator: evaluator,
	}
}

func (b *Bot) Answer(ctx context.Context, query string) (Response, error) {
	text := strings.ToLower(strings.TrimSpace(query))
	if text == "" {
		return Response{}, ErrEmptyQuery
	}

	if number := complaintNumberPattern.FindString(query); number != "" && b.lookup != nil {
		return b.answerComplaint(ctx, strings.ToUpper(number))
	}

	switch {
	case containsAny(text, "customer", "client", "user") && containsAny(text, "lookup", "find", "search"):
		if customer, ok := b.pickCustomer(); ok {
			return Response{Response: fmt.Sprintf("Found customer: %s (ID: %s)", customer.Name, customer.ID), Data: customer}, nil
		}
	case containsAny(text, "balance", "account"):
		if account, ok := b.pickAccount(); ok {
			return Response{
				Response: fmt.Sprintf("Account %s: Balance is %s, Status: %s", account.AccountNumber, account.Balance, account.Status),
				Data:     account,
			}, nil
		}
	case containsAny(text, "transaction", "history", "payment"):
		if len(b.directory.Transactions) > 0 {
			return Response{Response: "Recent transactions found:", Data: map[string]interface{}{"transactions": b.sampleTransactions(3)}}, nil
		}
	case strings.Contains(text, "status"):
		if account, ok := b.pickAccount(); ok {
			return Response{
				Response: fmt.Sprintf("Account status: %s, Last transaction: %s", account.Status, account.LastTransaction),
				Data:     account,
			}, nil
		}
	case containsAny(text, "contact", "phone", "email"):
		if customer, ok := b.pickCustomer(); ok {
			return Response{Response: fmt.Sprintf("Contact info - Email: %s, Phone: %s", customer.Email, customer.Phone), Data: customer}, nil
		}
	}

	b.mu.Lock()
	answer := fallbackAnswers[b.rng.Intn(len(fallbackAnswers))]
	b.mu.Unlock()
	return Response{Response: answer}, nil
}

func (b *Bot) answerComplaint(ctx context.Context, number string) (Response, error) {
	complaint, err := b.lookup(ctx, number)
	if err != nil {
		return Response{}, err
	}
	result := b.evaluator.EvaluateTime(complaint.CreatedAt, float64(complaint.SLAHours))
	if complaint.Status == models.StatusClosed {
		return Response{
			Response: fmt.Sprintf("Complaint %s is closed.", complaint.ComplaintNumber),
			Data:     map[string]interface{}{"complaint": complaint},
		}, nil
	}
	return Response{
		Response: fmt.Sprintf("Complaint %s is %s, SLA %s (%s remaining).", complaint.ComplaintNumber, complaint.Status, result.Status, sla.Label(result)),
		Data:     map[string]interface{}{"complaint": complaint, "sla": result},
	}, nil
}

func (b *Bot) pickCustomer() (Customer, bool) {
	if len(b.directory.Customers) == 0 {
		return Customer{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.directory.Customers[b.rng.Intn(len(b.directory.Customers))], true
}

func (b *Bot) pickAccount() (Account, bool) {
	if len(b.directory.Accounts) == 0 {
		return Account{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.directory.Accounts[b.rng.Intn(len(b.directory.Accounts))], true
}

func (b *Bot) sampleTransactions(n int) []Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.directory.Transactions) {
		n = len(b.directory.Transactions)
	}
	out := make([]Transaction, 0, n)
	for _, i := range b.rng.Perm(len(b.directory.Transactions))[:n] {
		out = append(out, b.directory.Transactions[i])
	}
	return out
}

func containsAny(text string, words ...string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
