// Package autoload initializes the global logger from the environment as a
// side effect of being imported.
package autoload

import (
	configx "github.com/zaidtausif56/smart-calling-agent/pkg/config"
	logx "github.com/zaidtausif56/smart-calling-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
