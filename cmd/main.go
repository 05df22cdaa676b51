package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"landingapi/config"
	"landingapi/internal/pkg/cache"
	"landingapi/internal/pkg/database"
	"landingapi/internal/pkg/logger"
	"landingapi/internal/pkg/token"

	// Camadas do domínio para Injeção de Dependências
	"landingapi/internal/api/auth"
	"landingapi/internal/api/contact" // Handlers
	"landingapi/internal/api/router"  // Roteador central
	"landingapi/internal/api/user"
	"landingapi/internal/repository/contactrepo" // Acesso a Dados
	"landingapi/internal/repository/newsletterrepo"
	"landingapi/internal/repository/userrepo"
	"landingapi/internal/service/contactservice" // Lógica de Negócio
	"landingapi/internal/service/newsletterservice"
	"landingapi/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço LandingAPI...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos em frente: as variáveis essenciais podem estar
		// no ambiente do sistema (ex: Docker).
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis): rate limit das rotas públicas + denylist de logout
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Formulário de contato + newsletter
	contactRepo := contactrepo.NewContactRepository(db, cfg.DBTimeout, log)
	newsletterRepo := newsletterrepo.NewNewsletterRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios de Contato e Newsletter inicializados.", nil)

	contactSvc := contactservice.NewService(contactRepo, log)
	newsletterSvc := newsletterservice.NewService(newsletterRepo, log)
	log.Debug("Serviços de Contato e Newsletter inicializados.", nil)

	contactHandler := contact.NewHandler(contactSvc, newsletterSvc, log)
	log.Debug("Handler de Contato inicializado.", nil)

	// B. Usuários e autenticação
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositório de Usuário inicializado.", nil)

	userSvc := userservice.NewService(userRepo, tokenSvc, cacheClient, log)
	log.Debug("Serviço de Usuário inicializado.", nil)

	userHandler := user.NewHandler(userSvc, log)
	authHandler := auth.NewHandler(userSvc, log)
	log.Debug("Handlers de Usuário e Autenticação inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(contactHandler, userHandler, authHandler, router.Config{
		TokenService:         tokenSvc,
		Cache:                cacheClient,
		RateLimitMaxRequests: cfg.RateLimitMaxRequests,
		RateLimitPeriod:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor LandingAPI ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
