package member

import (
	"github.com/meritworks/meritboard/internal/member/repository"
	"github.com/meritworks/meritboard/internal/member/service"
	"go.uber.org/fx"
)

var Module = fx.Module("member.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
