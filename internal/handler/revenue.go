package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// RevenueHandler exposes revenue reports.  Amounts leave the API in major
// currency units.
type RevenueHandler struct {
	Revenue *service.RevenueService
}

func NewRevenueHandler(r *service.RevenueService) *RevenueHandler {
	return &RevenueHandler{Revenue: r}
}

// periodKeys names the data key and the per-bucket total key of each
// granularity.
var periodKeys = map[model.Granularity][2]string{
	model.Daily:   {"dailyRevenue", "dailyTotal"},
	model.Weekly:  {"weeklyRevenue", "weeklyTotal"},
	model.Monthly: {"monthlyRevenue", "monthlyTotal"},
	model.Yearly:  {"yearlyRevenue", "yearlyTotal"},
}

type sellerRevenueItem struct {
	SellerID     uint64  `json:"sellerId"`
	SellerName   string  `json:"sellerName"`
	TotalRevenue float64 `json:"totalRevenue"`
	OrderCount   int64   `json:"orderCount"`
}

func major(cents int64) float64 { return float64(cents) / 100 }

func periodItems(buckets []model.PeriodTotal, totalKey string) []echo.Map {
	out := make([]echo.Map, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, echo.Map{"_id": b.PeriodID, totalKey: major(b.TotalCents)})
	}
	return out
}

// Seller handles GET /v1/revenue.
func (h *RevenueHandler) Seller(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	total, err := h.Revenue.SellerTotal(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"sellerRevenue": major(total)}))
}

// Total handles GET /v1/revenue/total.
func (h *RevenueHandler) Total(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	total, err := h.Revenue.PlatformTotal(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"totalRevenue": major(total)}))
}

// Period returns the handler for one of the current-period reports.
func (h *RevenueHandler) Period(g model.Granularity) echo.HandlerFunc {
	keys := periodKeys[g]
	return func(c echo.Context) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		buckets, err := h.Revenue.Current(ctx, middleware.PrincipalFrom(c), g)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, success(echo.Map{keys[0]: periodItems(buckets, keys[1])}))
	}
}

// Range handles GET /v1/revenue/range?startDate=&endDate=.
func (h *RevenueHandler) Range(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	buckets, err := h.Revenue.Range(ctx, middleware.PrincipalFrom(c), c.QueryParam("startDate"), c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"revenueByRange": periodItems(buckets, "dailyTotal")}))
}

// PerSeller handles GET /v1/revenue/sellers.
func (h *RevenueHandler) PerSeller(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rows, err := h.Revenue.PerSeller(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	out := make([]sellerRevenueItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, sellerRevenueItem{
			SellerID:     r.SellerID,
			SellerName:   r.SellerName,
			TotalRevenue: major(r.TotalCents),
			OrderCount:   r.OrderCount,
		})
	}
	return c.JSON(http.StatusOK, success(echo.Map{"revenuePerSeller": out}))
}
