package main

import (
	"database/sql"
	"net/http"

	"github.com/josh-kwaku/grey-ledger/api"
	"github.com/josh-kwaku/grey-ledger/internal/auth"
	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/handler"
	"github.com/josh-kwaku/grey-ledger/internal/middleware"
	"github.com/josh-kwaku/grey-ledger/internal/repository"
	"github.com/josh-kwaku/grey-ledger/internal/service"
	"github.com/josh-kwaku/grey-ledger/internal/service/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/service/report"
)

func newRouter(cfg *config.Config, db *sql.DB) http.Handler {
	txRunner := repository.NewDB(db)
	accountRepo := repository.NewAccountRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	balanceRepo := repository.NewBalanceRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	accountSvc := service.NewAccountService(accountRepo, txRunner)
	ledgerSvc := ledger.NewService(journalRepo, accountRepo, txRunner, cfg)
	calc := ledger.NewBalanceCalculator(balanceRepo, accountRepo)
	reportSvc := report.NewService(accountRepo, calc, budgetRepo, balanceRepo)
	budgetSvc := service.NewBudgetService(budgetRepo, accountRepo, txRunner)
	sequences := service.NewSequenceAllocator(sequenceRepo, txRunner, cfg)

	accounts := handler.NewAccountHandler(accountSvc, calc)
	journal := handler.NewJournalHandler(ledgerSvc)
	reports := handler.NewReportHandler(reportSvc)
	budgets := handler.NewBudgetHandler(budgetSvc)
	seqs := handler.NewSequenceHandler(sequences)
	health := handler.NewHealthHandler(db, version)

	authed := middleware.Auth(cfg.JWTSecret)
	idem := middleware.Idempotency(idempotencyRepo)

	// read wraps a query handler; write additionally honours Idempotency-Key.
	read := func(perm auth.Permission, h http.HandlerFunc) http.Handler {
		return authed(middleware.Require(perm)(h))
	}
	write := func(perm auth.Permission, h http.HandlerFunc) http.Handler {
		return authed(middleware.Require(perm)(idem(h)))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Liveness)
	mux.HandleFunc("GET /health/ready", health.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs("/docs/openapi.yaml"))
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.Spec))

	mux.Handle("POST /api/v1/accounts", write(auth.PermCreate, accounts.Create))
	mux.Handle("GET /api/v1/accounts", read(auth.PermView, accounts.List))
	mux.Handle("GET /api/v1/accounts/tree", read(auth.PermView, accounts.Tree))
	mux.Handle("GET /api/v1/accounts/{id}", read(auth.PermView, accounts.Get))
	mux.Handle("PATCH /api/v1/accounts/{id}", write(auth.PermEdit, accounts.Update))
	mux.Handle("DELETE /api/v1/accounts/{id}", write(auth.PermDelete, accounts.Delete))
	mux.Handle("POST /api/v1/accounts/{id}/deactivate", write(auth.PermEdit, accounts.Deactivate))
	mux.Handle("POST /api/v1/accounts/{id}/reactivate", write(auth.PermEdit, accounts.Reactivate))
	mux.Handle("GET /api/v1/accounts/{id}/balance", read(auth.PermView, accounts.Balance))
	mux.Handle("GET /api/v1/accounts/{id}/ledger", read(auth.PermView, accounts.Ledger))

	mux.Handle("POST /api/v1/journal-entries", write(auth.PermCreate, journal.Create))
	mux.Handle("GET /api/v1/journal-entries", read(auth.PermView, journal.List))
	mux.Handle("GET /api/v1/journal-entries/{id}", read(auth.PermView, journal.Get))
	mux.Handle("PUT /api/v1/journal-entries/{id}", write(auth.PermEdit, journal.Update))
	mux.Handle("DELETE /api/v1/journal-entries/{id}", write(auth.PermDelete, journal.Delete))
	mux.Handle("POST /api/v1/journal-entries/{id}/post", write(auth.PermApprove, journal.Post))
	mux.Handle("POST /api/v1/journal-entries/{id}/reverse", write(auth.PermApprove, journal.Reverse))

	mux.Handle("GET /api/v1/reports/general-ledger", read(auth.PermView, reports.GeneralLedger))
	mux.Handle("GET /api/v1/reports/profit-loss", read(auth.PermView, reports.ProfitAndLoss))
	mux.Handle("GET /api/v1/reports/balance-sheet", read(auth.PermView, reports.BalanceSheet))
	mux.Handle("GET /api/v1/reports/trial-balance", read(auth.PermView, reports.TrialBalance))
	mux.Handle("GET /api/v1/reports/summary", read(auth.PermView, reports.Summary))
	mux.Handle("GET /api/v1/reports/account-tree", read(auth.PermView, reports.AccountTree))

	mux.Handle("POST /api/v1/budgets", write(auth.PermCreate, budgets.Create))
	mux.Handle("GET /api/v1/budgets", read(auth.PermView, budgets.List))
	mux.Handle("GET /api/v1/budgets/{id}", read(auth.PermView, budgets.Get))
	mux.Handle("PUT /api/v1/budgets/{id}/lines", write(auth.PermEdit, budgets.SetLines))
	mux.Handle("GET /api/v1/budgets/{id}/variance", read(auth.PermView, reports.BudgetVariance))

	mux.Handle("GET /api/v1/sequences/{kind}", read(auth.PermView, seqs.Peek))
	mux.Handle("POST /api/v1/sequences/{kind}", write(auth.PermCreate, seqs.Next))

	return middleware.Recovery(middleware.Tracing(middleware.Logging(mux)))
}
