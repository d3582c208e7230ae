package main

import (
	"go.uber.org/fx"

	"github.com/Conte777/linkbot/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
