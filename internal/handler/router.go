package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/middleware"
	"github.com/noah-isme/guru-admin-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Class      *ClassHandler
	Student    *StudentHandler
	Semester   *SemesterHandler
	Attendance *AttendanceHandler
	Score      *ScoreHandler
	Material   *MaterialHandler
	Journal    *JournalHandler
	Ledger     *LedgerHandler
	Weight     *WeightHandler
	Dashboard  *DashboardHandler
	Database   *DatabaseHandler
}

// RegisterRoutes mounts the API. Everything except login and signed backup downloads requires a
// valid access token; database maintenance is restricted to admins.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, tokens middleware.TokenValidator) {
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/database/download/:token", h.Database.Download)

	secured := api.Group("", middleware.JWT(tokens))
	secured.POST("/auth/change-password", h.Auth.ChangePassword)

	pengguna := secured.Group("/pengguna")
	pengguna.GET("/profil", h.User.Profile)
	pengguna.PUT("/profil", h.User.UpdateProfile)

	secured.GET("/dashboard", h.Dashboard.Summary)

	kelas := secured.Group("/kelas")
	kelas.GET("", h.Class.List)
	kelas.POST("", h.Class.Create)
	kelas.GET("/:id", h.Class.Get)
	kelas.PUT("/:id", h.Class.Update)
	kelas.DELETE("/:id", h.Class.Delete)

	siswa := secured.Group("/siswa")
	siswa.GET("", h.Student.List)
	siswa.POST("", h.Student.Create)
	siswa.GET("/:id", h.Student.Get)
	siswa.PUT("/:id", h.Student.Update)
	siswa.DELETE("/:id", h.Student.Delete)

	semester := secured.Group("/semester")
	semester.GET("", h.Semester.List)
	semester.POST("", h.Semester.Create)
	semester.GET("/aktif", h.Semester.Active)
	semester.GET("/:id", h.Semester.Get)
	semester.PUT("/:id", h.Semester.Update)
	semester.POST("/:id/aktifkan", h.Semester.Activate)
	semester.DELETE("/:id", h.Semester.Delete)

	absensi := secured.Group("/absensi")
	absensi.GET("", h.Attendance.Roster)
	absensi.POST("", h.Attendance.Save)
	absensi.GET("/rekap", h.Attendance.Recap)

	nilai := secured.Group("/nilai")
	nilai.PATCH("", h.Score.UpdateSingle)
	nilai.GET("/topik", h.Score.Topics)
	nilai.GET("/formatif", h.Score.FormativeRoster)
	nilai.POST("/formatif", h.Score.SaveFormative)
	nilai.GET("/sumatif", h.Score.SummativeRoster)
	nilai.POST("/sumatif", h.Score.SaveSummative)

	legger := secured.Group("/legger")
	legger.GET("", h.Ledger.Get)
	legger.POST("/generate", h.Ledger.Generate)
	legger.GET("/snapshot", h.Ledger.Snapshots)
	legger.GET("/export", h.Ledger.Export)

	materi := secured.Group("/materi")
	materi.GET("", h.Material.List)
	materi.POST("", h.Material.Create)
	materi.GET("/:id", h.Material.Get)
	materi.PUT("/:id", h.Material.Update)
	materi.DELETE("/:id", h.Material.Delete)

	jurnal := secured.Group("/jurnal")
	jurnal.GET("", h.Journal.List)
	jurnal.POST("", h.Journal.Create)
	jurnal.GET("/:id", h.Journal.Get)
	jurnal.PUT("/:id", h.Journal.Update)
	jurnal.DELETE("/:id", h.Journal.Delete)

	bobot := secured.Group("/bobot-nilai")
	bobot.GET("", h.Weight.Get)
	bobot.PUT("", h.Weight.Update)

	database := secured.Group("/database", middleware.RequireRoles(models.RoleAdmin))
	database.GET("/info", h.Database.Info)
	database.POST("/backup", h.Database.Backup)
	database.GET("/backup/:id", h.Database.BackupStatus)
	database.GET("/backups", h.Database.Backups)
	database.GET("/backups/:name/link", h.Database.Link)
	database.POST("/optimize", h.Database.Optimize)
	database.POST("/reset", h.Database.Reset)
	database.POST("/restore", h.Database.Restore)
}
