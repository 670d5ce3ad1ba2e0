package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"kaban/config"
	"kaban/database"
	"kaban/logger"
	"kaban/web"
	"kaban/web/global"
	"kaban/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Notice:
		logger.InitLogger(logging.NOTICE)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	err := database.InitDB(config.GetDBPath())
	if err != nil {
		log.Fatal(err)
	}

	var server *web.Server

	server = web.NewServer()
	global.SetWebServer(server)
	err = server.Start()
	if err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			err := server.Stop()
			if err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			global.SetWebServer(server)
			err = server.Start()
			if err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			if err := database.CloseDB(); err != nil {
				logger.Warning("close db err:", err)
			}
			logger.CloseLogger()
			return
		}
	}
}

func resetAuth() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	if err := userService.DeleteAllUsers(); err != nil {
		fmt.Println("reset auth failed:", err)
	} else {
		fmt.Println("all users deleted, authentication is disabled")
	}
}

func showSetting() {
	err := database.InitDB(config.GetDBPath())
	if err != nil {
		fmt.Println(err)
		return
	}

	userService := service.UserService{}
	count, err := userService.CountUsers()
	if err != nil {
		fmt.Println("get user count failed:", err)
		return
	}
	fmt.Println("current settings as follows:")
	fmt.Println("port:", config.GetPort())
	fmt.Println("db:", config.GetDBPath())
	fmt.Println("users:", count)
	fmt.Println("auth enabled:", count > 0)
}

func main() {
	// A local .env is optional.
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use: "kaban",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect or reset settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var resetAuthCmd = &cobra.Command{
		Use:   "reset-auth",
		Short: "Delete all users and disable authentication",
		Run: func(cmd *cobra.Command, args []string) {
			resetAuth()
		},
	}

	settingCmd.AddCommand(showCmd, resetAuthCmd)

	rootCmd.AddCommand(runCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
