package fx

import (
	"github.com/orgball2608/technews-autopilot/internal/repositories/activity"
	"github.com/orgball2608/technews-autopilot/internal/repositories/analytics"
	"github.com/orgball2608/technews-autopilot/internal/repositories/configuration"
	"github.com/orgball2608/technews-autopilot/internal/repositories/credential"
	"github.com/orgball2608/technews-autopilot/internal/repositories/engagement"
	"github.com/orgball2608/technews-autopilot/internal/repositories/memory"
	"github.com/orgball2608/technews-autopilot/internal/repositories/post"
	"github.com/orgball2608/technews-autopilot/internal/repositories/queue"
	"github.com/orgball2608/technews-autopilot/internal/repositories/session"
	"github.com/orgball2608/technews-autopilot/internal/repositories/target"
	"github.com/orgball2608/technews-autopilot/pkg/pgx"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(pgx.New),
	post.Module,
	queue.Module,
	analytics.Module,
	engagement.Module,
	activity.Module,
	configuration.Module,
	target.Module,
	credential.Module,
	session.Module,
)

// MemoryModule keeps every repository in process, for STORAGE_DRIVER=memory.
var MemoryModule = memory.Module
