package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	ScrapeRunTimeout   = 5 * time.Minute
)

const (
	DefaultPortalBaseURL = "https://bordtennisportalen.dk"
	PlayerProfilePath    = "/SportsResults/Components/WebService1.asmx/GetPlayerProfile"
	RankingListPath      = "/SportsResults/Components/WebService1.asmx/GetPlayerRankingListPoints"

	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:131.0) Gecko/20100101 Firefox/131.0"
	JSONContentType  = "application/json; charset=utf-8"
)

// Markup hooks on the portal's HTML fragments.
const (
	ShowPointsTitle   = "Vis opnåede point"
	RankingTableClass = "playerprofilerankingpointstable"
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HistoryRunLimit = 20
)
