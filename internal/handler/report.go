package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/grey-ledger/internal/service/report"
)

type reportService interface {
	GeneralLedger(ctx context.Context, params report.GLParams) (*report.GeneralLedger, error)
	ProfitAndLoss(ctx context.Context, start, end time.Time) (*report.ProfitAndLoss, error)
	BalanceSheet(ctx context.Context, asOf time.Time) (*report.BalanceSheet, error)
	TrialBalance(ctx context.Context, asOf time.Time) (*report.TrialBalance, error)
	BudgetVariance(ctx context.Context, budgetID int64, start, end time.Time) (*report.BudgetVariance, error)
	AccountTreeBalances(ctx context.Context, asOf time.Time) ([]*report.TreeNode, error)
	Summary(ctx context.Context, start, end time.Time) (*report.Summary, error)
}

type ReportHandler struct {
	reports reportService
	now     func() time.Time
}

func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

type statementLineDTO struct {
	AccountID *int64 `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

type sectionDTO struct {
	Accounts []statementLineDTO `json:"accounts"`
	Total    string             `json:"total"`
}

func toSectionDTO(s report.Section) sectionDTO {
	dto := sectionDTO{Total: amount(s.Total), Accounts: make([]statementLineDTO, len(s.Accounts))}
	for i, ab := range s.Accounts {
		line := statementLineDTO{
			Code:      ab.Account.Code,
			Name:      ab.Account.Name,
			Balance:   amount(ab.Balance),
			Synthetic: ab.Synthetic,
		}
		if !ab.Synthetic {
			id := ab.Account.ID
			line.AccountID = &id
		}
		dto.Accounts[i] = line
	}
	return dto
}

type generalLedgerDTO struct {
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	Accounts    []runningLedgerDTO `json:"accounts"`
	TotalDebit  string             `json:"total_debit"`
	TotalCredit string             `json:"total_credit"`
	Warnings    []string           `json:"warnings"`
}

func (h *ReportHandler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	params := report.GLParams{
		Start:           q.date("start_date", true),
		End:             q.date("end_date", true),
		AccountIDs:      q.ids("account_ids"),
		Types:           q.types("type"),
		IncludeUnposted: q.boolean("include_unposted"),
	}
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	gl, err := h.reports.GeneralLedger(r.Context(), params)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dto := generalLedgerDTO{
		StartDate:   formatDate(gl.Start),
		EndDate:     formatDate(gl.End),
		Accounts:    make([]runningLedgerDTO, len(gl.Accounts)),
		TotalDebit:  amount(gl.TotalDebit),
		TotalCredit: amount(gl.TotalCredit),
		Warnings:    nonNil(gl.Warnings),
	}
	for i := range gl.Accounts {
		dto.Accounts[i] = toRunningLedgerDTO(&gl.Accounts[i])
	}
	RespondSuccess(w, http.StatusOK, dto)
}

type profitAndLossDTO struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Revenue   sectionDTO `json:"revenue"`
	Expenses  sectionDTO `json:"expenses"`
	NetIncome string     `json:"net_income"`
}

func (h *ReportHandler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	start := q.date("start_date", true)
	end := q.date("end_date", true)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	pl, err := h.reports.ProfitAndLoss(r.Context(), start, end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, profitAndLossDTO{
		StartDate: formatDate(pl.Start),
		EndDate:   formatDate(pl.End),
		Revenue:   toSectionDTO(pl.Revenue),
		Expenses:  toSectionDTO(pl.Expenses),
		NetIncome: amount(pl.NetIncome),
	})
}

type balanceSheetDTO struct {
	AsOf                      string     `json:"as_of"`
	Assets                    sectionDTO `json:"assets"`
	Liabilities               sectionDTO `json:"liabilities"`
	Equity                    sectionDTO `json:"equity"`
	NetIncome                 string     `json:"net_income"`
	TotalLiabilitiesAndEquity string     `json:"total_liabilities_and_equity"`
	Balanced                  bool       `json:"balanced"`
	Warnings                  []string   `json:"warnings"`
}

// asOf reads the as_of parameter, defaulting to today.
func (h *ReportHandler) asOf(q *queryParams) time.Time {
	t := q.date("as_of", false)
	if t.IsZero() {
		t = h.now()
	}
	return t
}

func (h *ReportHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	asOf := h.asOf(q)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	bs, err := h.reports.BalanceSheet(r.Context(), asOf)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, balanceSheetDTO{
		AsOf:                      formatDate(bs.AsOf),
		Assets:                    toSectionDTO(bs.Assets),
		Liabilities:               toSectionDTO(bs.Liabilities),
		Equity:                    toSectionDTO(bs.Equity),
		NetIncome:                 amount(bs.NetIncome),
		TotalLiabilitiesAndEquity: amount(bs.TotalLiabilitiesAndEquity),
		Balanced:                  bs.Balanced,
		Warnings:                  nonNil(bs.Warnings),
	})
}

type trialBalanceLineDTO struct {
	AccountID int64  `json:"account_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Debit     string `json:"debit"`
	Credit    string `json:"credit"`
}

type trialBalanceDTO struct {
	AsOf        string                `json:"as_of"`
	Lines       []trialBalanceLineDTO `json:"lines"`
	TotalDebit  string                `json:"total_debit"`
	TotalCredit string                `json:"total_credit"`
	Balanced    bool                  `json:"balanced"`
}

func (h *ReportHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	asOf := h.asOf(q)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	tb, err := h.reports.TrialBalance(r.Context(), asOf)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dto := trialBalanceDTO{
		AsOf:        formatDate(tb.AsOf),
		Lines:       make([]trialBalanceLineDTO, len(tb.Lines)),
		TotalDebit:  amount(tb.TotalDebit),
		TotalCredit: amount(tb.TotalCredit),
		Balanced:    tb.Balanced,
	}
	for i, l := range tb.Lines {
		dto.Lines[i] = trialBalanceLineDTO{
			AccountID: l.Account.ID,
			Code:      l.Account.Code,
			Name:      l.Account.Name,
			Type:      string(l.Account.Type),
			Debit:     amount(l.Debit),
			Credit:    amount(l.Credit),
		}
	}
	RespondSuccess(w, http.StatusOK, dto)
}

type varianceRowDTO struct {
	Period      int     `json:"period"`
	Label       string  `json:"label"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Budget      string  `json:"budget"`
	Actual      string  `json:"actual"`
	Variance    string  `json:"variance"`
	VariancePct *string `json:"variance_pct"`
}

type accountVarianceDTO struct {
	AccountID   int64            `json:"account_id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Periods     []varianceRowDTO `json:"periods"`
	Budget      string           `json:"budget"`
	Actual      string           `json:"actual"`
	Variance    string           `json:"variance"`
	VariancePct *string          `json:"variance_pct"`
}

type budgetVarianceDTO struct {
	BudgetID    int64                `json:"budget_id"`
	Name        string               `json:"name"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Accounts    []accountVarianceDTO `json:"accounts"`
	Budget      string               `json:"budget"`
	Actual      string               `json:"actual"`
	Variance    string               `json:"variance"`
	VariancePct *string              `json:"variance_pct"`
}

func (h *ReportHandler) BudgetVariance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}
	q := newQueryParams(r)
	start := q.date("start_date", false)
	end := q.date("end_date", false)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	bv, err := h.reports.BudgetVariance(r.Context(), id, start, end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dto := budgetVarianceDTO{
		BudgetID:    bv.Budget.ID,
		Name:        bv.Budget.Name,
		StartDate:   formatDate(bv.Start),
		EndDate:     formatDate(bv.End),
		Accounts:    make([]accountVarianceDTO, len(bv.Accounts)),
		Budget:      amount(bv.Budgeted),
		Actual:      amount(bv.Actual),
		Variance:    amount(bv.Variance),
		VariancePct: amountPtr(bv.VariancePct),
	}
	for i, av := range bv.Accounts {
		a := accountVarianceDTO{
			AccountID:   av.Account.ID,
			Code:        av.Account.Code,
			Name:        av.Account.Name,
			Periods:     make([]varianceRowDTO, len(av.Rows)),
			Budget:      amount(av.Budget),
			Actual:      amount(av.Actual),
			Variance:    amount(av.Variance),
			VariancePct: amountPtr(av.VariancePct),
		}
		for j, row := range av.Rows {
			a.Periods[j] = varianceRowDTO{
				Period:      row.Period.Number,
				Label:       row.Period.Label,
				StartDate:   formatDate(row.Period.Start),
				EndDate:     formatDate(row.Period.End),
				Budget:      amount(row.Budget),
				Actual:      amount(row.Actual),
				Variance:    amount(row.Variance),
				VariancePct: amountPtr(row.VariancePct),
			}
		}
		dto.Accounts[i] = a
	}
	RespondSuccess(w, http.StatusOK, dto)
}

type treeNodeDTO struct {
	AccountID int64         `json:"account_id"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Balance   string        `json:"balance"`
	Total     string        `json:"total"`
	Children  []treeNodeDTO `json:"children"`
}

func toTreeNodeDTOs(nodes []*report.TreeNode) []treeNodeDTO {
	out := make([]treeNodeDTO, len(nodes))
	for i, n := range nodes {
		out[i] = treeNodeDTO{
			AccountID: n.Account.ID,
			Code:      n.Account.Code,
			Name:      n.Account.Name,
			Type:      string(n.Account.Type),
			Balance:   amount(n.Balance),
			Total:     amount(n.Total),
			Children:  toTreeNodeDTOs(n.Children),
		}
	}
	return out
}

func (h *ReportHandler) AccountTree(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	asOf := h.asOf(q)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}

	tree, err := h.reports.AccountTreeBalances(r.Context(), asOf)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toTreeNodeDTOs(tree))
}

type trendRowDTO struct {
	Month     string `json:"month"`
	Revenue   string `json:"revenue"`
	Expenses  string `json:"expenses"`
	NetIncome string `json:"net_income"`
}

type summaryDTO struct {
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	TotalRevenue  string        `json:"total_revenue"`
	TotalExpenses string        `json:"total_expenses"`
	NetIncome     string        `json:"net_income"`
	Trend         []trendRowDTO `json:"trend"`
}

// Summary defaults to the calendar year to date.
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	start := q.date("start_date", false)
	end := q.date("end_date", false)
	if len(q.errs) > 0 {
		RespondValidationError(w, q.errs)
		return
	}
	if end.IsZero() {
		end = h.now()
	}
	if start.IsZero() {
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	s, err := h.reports.Summary(r.Context(), start, end)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dto := summaryDTO{
		StartDate:     formatDate(s.Start),
		EndDate:       formatDate(s.End),
		TotalRevenue:  amount(s.TotalRevenue),
		TotalExpenses: amount(s.TotalExpenses),
		NetIncome:     amount(s.NetIncome),
		Trend:         make([]trendRowDTO, len(s.Trend)),
	}
	for i, t := range s.Trend {
		dto.Trend[i] = trendRowDTO{
			Month:     t.Month.Format("2006-01"),
			Revenue:   amount(t.Revenue),
			Expenses:  amount(t.Expenses),
			NetIncome: amount(t.NetIncome),
		}
	}
	RespondSuccess(w, http.StatusOK, dto)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
