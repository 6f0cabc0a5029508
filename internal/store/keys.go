package store

// Keys of the independently stored records.
const (
	KeyTimes           = "times"
	KeyProfiles        = "profiles"
	KeyRecentCircuits  = "recent_circuits"
	KeyRelativeDates   = "relative_dates"
	KeyCSVBackup       = "csv_backup"
	KeySelectedProfile = "selected_profile"
)

// AllKeys lists every record the adapter owns.
var AllKeys = []string{
	KeyTimes,
	KeyProfiles,
	KeyRecentCircuits,
	KeyRelativeDates,
	KeyCSVBackup,
	KeySelectedProfile,
}
