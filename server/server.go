package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/dinein/handlers"
	"github.com/ray-remotestate/dinein/middlewares"
	"github.com/ray-remotestate/dinein/models"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

// SetupRoutes wires every endpoint. Public routes are registered first so
// that fixed paths such as /bills/recent win over /bills/{id}.
func SetupRoutes(h *handlers.Handler, auth *middlewares.Authenticator, ws http.Handler, log logrus.FieldLogger) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.RequestID, middlewares.RequestLogger(log))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")
	router.Handle("/ws", auth.SocketAuth(ws)).Methods("GET")

	// customers: table OTP instead of a token
	public := router.NewRoute().Subrouter()
	public.Use(auth.OptionalAuth)
	public.HandleFunc("/auth/login", h.Login).Methods("POST")
	public.HandleFunc("/tables/verify-otp", h.VerifyTableOTP).Methods("POST")
	public.HandleFunc("/foodtypes", h.ListFoodTypes).Methods("GET")
	public.HandleFunc("/foods", h.ListFoods).Methods("GET")
	public.HandleFunc("/foods/{id}", h.GetFood).Methods("GET")
	public.HandleFunc("/orders", h.CreateOrder).Methods("POST")
	public.HandleFunc("/orders", h.ListOrders).Methods("GET")
	public.HandleFunc("/waiter-calls", h.CallWaiter).Methods("POST")
	public.HandleFunc("/bills/check/{tableOtp}", h.CheckTableBill).Methods("GET")
	public.HandleFunc("/send-otp", h.SendPhoneOTP).Methods("POST")
	public.HandleFunc("/verify-otp", h.VerifyPhoneOTP).Methods("POST")

	authRoutes := router.NewRoute().Subrouter()
	authRoutes.Use(auth.AuthMiddleware)
	authRoutes.HandleFunc("/auth/me", h.Me).Methods("GET")

	// admin only
	admin := authRoutes.NewRoute().Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))

	admin.HandleFunc("/auth/register", h.Register).Methods("POST")
	admin.HandleFunc("/auth/users", h.ListUsers).Methods("GET")
	admin.HandleFunc("/auth/users/{id}", h.GetUser).Methods("GET")
	admin.HandleFunc("/auth/users/{id}", h.UpdateUser).Methods("PUT")
	admin.HandleFunc("/auth/users/{id}", h.DeleteUser).Methods("DELETE")

	admin.HandleFunc("/restaurants", h.CreateRestaurant).Methods("POST")
	admin.HandleFunc("/restaurants", h.ListRestaurants).Methods("GET")
	admin.HandleFunc("/restaurants/{id}", h.GetRestaurant).Methods("GET")
	admin.HandleFunc("/restaurants/{id}", h.UpdateRestaurant).Methods("PUT")
	admin.HandleFunc("/restaurants/{id}", h.DeleteRestaurant).Methods("DELETE")

	admin.HandleFunc("/tables", h.CreateTable).Methods("POST")
	admin.HandleFunc("/tables/{id}", h.UpdateTable).Methods("PUT")
	admin.HandleFunc("/tables/{id}", h.DeleteTable).Methods("DELETE")

	admin.HandleFunc("/foodtypes", h.CreateFoodType).Methods("POST")
	admin.HandleFunc("/foodtypes/{id}", h.UpdateFoodType).Methods("PUT")
	admin.HandleFunc("/foodtypes/{id}", h.DeleteFoodType).Methods("DELETE")
	admin.HandleFunc("/foods", h.CreateFood).Methods("POST")
	admin.HandleFunc("/foods/{id}", h.UpdateFood).Methods("PUT")
	admin.HandleFunc("/foods/{id}", h.DeleteFood).Methods("DELETE")

	admin.HandleFunc("/orders/{id}/cancel", h.CancelOrder).Methods("PATCH")
	admin.HandleFunc("/orders/{id}", h.DeleteOrder).Methods("DELETE")
	admin.HandleFunc("/bills/{id}", h.DeleteBill).Methods("DELETE")
	admin.HandleFunc("/reports", h.Report).Methods("GET")

	// admin n billing
	billing := authRoutes.NewRoute().Subrouter()
	billing.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin, models.RoleBilling))

	billing.HandleFunc("/tables/{id}/refresh-otp", h.RefreshTableOTP).Methods("POST")
	billing.HandleFunc("/tables/{id}/payment", h.UpdateTablePayment).Methods("PATCH")
	billing.HandleFunc("/bills", h.CreateBill).Methods("POST")
	billing.HandleFunc("/bills", h.ListBills).Methods("GET")
	billing.HandleFunc("/bills/recent", h.RecentBills).Methods("GET")
	billing.HandleFunc("/bills/{id}", h.GetBill).Methods("GET")
	billing.HandleFunc("/bills/{id}", h.UpdateBill).Methods("PUT")

	// every staff role
	staff := authRoutes.NewRoute().Subrouter()
	staff.Use(middlewares.RoleBasedMiddleware(models.StaffRoles...))

	staff.HandleFunc("/tables", h.ListTables).Methods("GET")
	staff.HandleFunc("/tables/{id}", h.GetTable).Methods("GET")
	staff.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET")
	staff.HandleFunc("/orders/{id}/item/{itemIndex}", h.UpdateOrderItemStatus).Methods("PATCH")
	staff.HandleFunc("/orders/{orderId}/items/{itemIndex}", h.DeleteOrderItem).Methods("DELETE")
	staff.HandleFunc("/foods/{id}/stock", h.UpdateFoodStock).Methods("PATCH")
	staff.HandleFunc("/waiter-calls", h.ListWaiterCalls).Methods("GET")
	staff.HandleFunc("/waiter-calls/{id}/resolve", h.ResolveWaiterCall).Methods("PATCH")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	svr.server = &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	if err := svr.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	if svr.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
