package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chainware/supplyledger/internal/rate"
	"github.com/chainware/supplyledger/internal/store"
)

func RegisterRoutes(app *fiber.App, nc *nats.Conn, st store.Store,
	h *LedgerHandler, limiter *rate.Manager,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		checks := map[string]string{
			"nats":  "ok",
			"store": "ok",
		}
		status := "ok"
		code := fiber.StatusOK

		if nc == nil || !nc.IsConnected() {
			checks["nats"] = "disconnected"
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		} else if err := nc.FlushTimeout(1 * time.Second); err != nil {
			checks["nats"] = err.Error()
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}

		if st != nil {
			healthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.HealthCheck(healthCtx); err != nil {
				checks["store"] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	})

	v1 := app.Group("/api/v1")
	if limiter != nil {
		v1.Use(RateLimit(limiter))
	}

	// Reads are open; every mutation requires a caller identity.
	auth := RequireActor()

	companies := v1.Group("/companies")
	companies.Post("/", auth, h.RegisterCompany)
	companies.Put("/", auth, h.UpdateCompany)
	companies.Get("/", h.ListCompanies)
	companies.Get("/:address", h.GetCompany)

	products := v1.Group("/products")
	products.Post("/", auth, h.CreateProduct)
	products.Post("/manufacture", auth, h.ManufactureProduct)
	products.Post("/:id/transfer", auth, h.TransferProduct)
	products.Get("/", h.ListProducts)
	products.Get("/:id", h.GetProduct)
	products.Get("/:id/tree", h.GetProductTree)
	products.Get("/:id/raw-sources", h.GetRawMaterialSources)

	relationships := v1.Group("/relationships")
	relationships.Post("/", auth, h.RequestRelationship)
	relationships.Post("/:id/negotiate", auth, h.NegotiateRelationship)
	relationships.Post("/:id/accept", auth, h.AcceptRelationship)
	relationships.Post("/:id/reject", auth, h.RejectRelationship)
	relationships.Get("/", h.ListRelationships)
	relationships.Get("/:id", h.GetRelationship)

	orders := v1.Group("/orders")
	orders.Post("/", auth, h.PlaceOrder)
	orders.Post("/:id/approve", auth, h.ApproveOrder)
	orders.Post("/:id/reject", auth, h.RejectOrder)
	orders.Post("/:id/pay", auth, h.PayForOrder)
	orders.Post("/:id/complete-external", auth, h.CompleteOrderExternal)
	orders.Post("/:id/cancel-expired", h.CancelExpiredOrder)
	orders.Post("/:id/delivery", auth, h.AddDeliveryEvent)
	orders.Get("/", h.ListOrders)
	orders.Get("/:id", h.GetOrder)
	orders.Get("/:id/delivery", h.ListDeliveryEvents)

	listings := v1.Group("/listings")
	listings.Post("/", auth, h.CreateListing)
	listings.Post("/:id/buy", auth, h.BuyListing)
	listings.Delete("/:id", auth, h.RemoveListing)
	listings.Get("/", h.ListActiveListings)
	listings.Get("/:id", h.GetListing)

	transactions := v1.Group("/transactions")
	transactions.Get("/", h.ListTransactions)
	transactions.Get("/:id", h.GetTransaction)
}
