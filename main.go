package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biblioteca/backend/config"
	"github.com/biblioteca/backend/handlers"
	"github.com/biblioteca/backend/middleware"
	"github.com/biblioteca/backend/service"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("indexes:", err)
	}

	var archive *service.ReportArchive
	if cfg.S3Bucket != "" {
		archive, err = service.NewReportArchive(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; report archiving disabled")
	}

	var notificador *service.Notificador
	if cfg.SMTPHost != "" {
		notificador = service.NewNotificador(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Println("warning: SMTP_HOST not set; overdue reminders disabled")
	}

	prestamosService := service.NewPrestamos(db)
	devolucionesService := service.NewDevoluciones(db, prestamosService, cfg.FinePerDay)

	autoresHandler := &handlers.AutoresHandler{DB: db}
	librosHandler := &handlers.LibrosHandler{DB: db}
	usuariosHandler := &handlers.UsuariosHandler{
		DB:            db,
		JWTSecret:     cfg.JWTSecret,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}
	prestamosHandler := &handlers.PrestamosHandler{DB: db, Service: prestamosService}
	devolucionesHandler := &handlers.DevolucionesHandler{DB: db, Service: devolucionesService}
	reportesHandler := &handlers.ReportesHandler{DB: db, Archive: archive, Notificador: notificador}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"API de biblioteca"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/usuarios/login", usuariosHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Route("/autores", func(r chi.Router) {
				r.Get("/", autoresHandler.List)
				r.Get("/{id}", autoresHandler.Get)
				r.Post("/", autoresHandler.Create)
				r.Put("/{id}", autoresHandler.Update)
				r.Delete("/{id}", autoresHandler.Delete)
			})

			r.Route("/libros", func(r chi.Router) {
				r.Get("/", librosHandler.List)
				r.Get("/disponibles", librosHandler.Disponibles)
				r.Get("/{id}", librosHandler.Get)
				r.Post("/", librosHandler.Create)
				r.Put("/{id}", librosHandler.Update)
				r.Delete("/{id}", librosHandler.Delete)
			})

			r.Route("/usuarios", func(r chi.Router) {
				r.Get("/", usuariosHandler.List)
				r.Get("/{id}", usuariosHandler.Get)
				r.Post("/", usuariosHandler.Create)
				r.Put("/{id}", usuariosHandler.Update)
				r.With(middleware.RequireAdmin).Delete("/{id}", usuariosHandler.Delete)
			})

			r.Route("/prestamos", func(r chi.Router) {
				r.Get("/", prestamosHandler.List)
				r.Get("/{id}", prestamosHandler.Get)
				r.Post("/", prestamosHandler.Create)
				r.Put("/{id}", prestamosHandler.Update)
				r.Delete("/{id}", prestamosHandler.Delete)
			})

			r.Route("/devoluciones", func(r chi.Router) {
				r.Get("/", devolucionesHandler.List)
				r.Get("/estadisticas/general", devolucionesHandler.Estadisticas)
				r.Get("/{id}", devolucionesHandler.Get)
				r.Post("/", devolucionesHandler.Create)
				r.Put("/{id}", devolucionesHandler.Update)
				r.Delete("/{id}", devolucionesHandler.Delete)
			})

			r.Route("/reportes", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/estadisticas-generales", reportesHandler.EstadisticasGenerales)
				r.Get("/prestamos-por-mes", reportesHandler.PrestamosPorMes)
				r.Get("/usuarios-por-rol", reportesHandler.UsuariosPorRol)
				r.Get("/libros-por-genero", reportesHandler.LibrosPorGenero)
				r.Get("/prestamos-vencidos", reportesHandler.PrestamosVencidos)
				r.Post("/prestamos-vencidos/{id}/notificar", reportesHandler.NotificarVencido)
				r.Get("/dashboard-admin", reportesHandler.DashboardAdmin)

				r.Get("/usuarios/pdf", reportesHandler.UsuariosPDF)
				r.Get("/usuarios/excel", reportesHandler.UsuariosExcel)
				r.Get("/libros/pdf", reportesHandler.LibrosPDF)
				r.Get("/libros/excel", reportesHandler.LibrosExcel)
				r.Get("/autores/pdf", reportesHandler.AutoresPDF)
				r.Get("/autores/excel", reportesHandler.AutoresExcel)
				r.Get("/prestamos/pdf", reportesHandler.PrestamosPDF)
				r.Get("/prestamos/excel", reportesHandler.PrestamosExcel)
				r.Get("/devoluciones/pdf", reportesHandler.DevolucionesPDF)
				r.Get("/devoluciones/excel", reportesHandler.DevolucionesExcel)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
