package chatbot

// DemoDirectory is the built-in sample data used when no directory is
// configured.
func DemoDirectory() Directory {
	return Directory{
		Customers: []Customer{
			{ID: "CUST001", Name: "Amara Okafor", Email: "amara.okafor@example.com", Phone: "+1-555-0141", AccountType: "Premium"},
			{ID: "CUST002", Name: "Lena Fischer", Email: "lena.fischer@example.com", Phone: "+1-555-0142", AccountType: "Standard"},
			{ID: "CUST003", Name: "Rahul Mehta", Email: "rahul.mehta@example.com", Phone: "+1-555-0143", AccountType: "Business"},
			{ID: "CUST004", Name: "Sofia Ramos", Email: "sofia.ramos@example.com", Phone: "+1-555-0144", AccountType: "Standard"},
		},
		Accounts: []Account{
			{AccountNumber: "ACC001", Balance: "$12,480.10", Status: "Active", LastTransaction: "2026-01-11"},
			{AccountNumber: "ACC002", Balance: "$3,905.42", Status: "Active", LastTransaction: "2026-01-10"},
			{AccountNumber: "ACC003", Balance: "$88,214.00", Status: "Active", LastTransaction: "2026-01-12"},
			{AccountNumber: "ACC004", Balance: "$640.75", Status: "Frozen", LastTransaction: "2025-12-29"},
		},
		Transactions: []Transaction{
			{Date: "2026-01-12", Description: "Card purchase", Amount: "-$82.40", Balance: "$12,480.10"},
			{Date: "2026-01-11", Description: "Payroll deposit", Amount: "+$4,200.00", Balance: "$12,562.50"},
			{Date: "2026-01-10", Description: "ATM withdrawal", Amount: "-$300.00", Balance: "$8,362.50"},
			{Date: "2026-01-09", Description: "Utility bill", Amount: "-$145.20", Balance: "$8,662.50"},
			{Date: "2026-01-08", Description: "Transfer in", Amount: "+$1,000.00", Balance: "$8,807.70"},
		},
	}
}
