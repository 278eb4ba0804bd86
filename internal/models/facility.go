package models

type Room struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"nama" json:"nama"`
	BuildingID   int64           `db:"gedung_id" json:"gedung"`
	BuildingName string          `db:"gedung_nama" json:"gedung_nama"`
	Usage        []ScheduleEntry `db:"-" json:"jadwal_pemakaian,omitempty"`
}

type ComplaintStatus string

const (
	ComplaintUnread   ComplaintStatus = "B"
	ComplaintAnswered ComplaintStatus = "D"
)

func (s ComplaintStatus) Valid() bool {
	return s == ComplaintUnread || s == ComplaintAnswered
}

func (s ComplaintStatus) Label() string {
	switch s {
	case ComplaintUnread:
		return "Belum Dibaca"
	case ComplaintAnswered:
		return "Di Tanggapi"
	}
	return string(s)
}

type Complaint struct {
	ID        int64           `db:"id" json:"id"`
	Status    ComplaintStatus `db:"status" json:"status"`
	Detail    string          `db:"detail" json:"detail"`
	Photo     *string         `db:"foto" json:"foto"`
	RoomID    int64           `db:"ruangan_id" json:"ruangan"`
	Response  *string         `db:"tanggapan" json:"tanggapan"`
	StudentID *int64          `db:"mahasiswa_id" json:"mahasiswa"`
}
