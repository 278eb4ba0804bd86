package access

// Resource is a REST resource family under /academic.
type Resource string

const (
	ResReference      Resource = "reference" // jurusan, semester, program_pendidikan, gedung, kurikulum, ruangan, pimpinan
	ResProgram        Resource = "prodi"
	ResStaff          Resource = "staff_prodi"
	ResLecturer       Resource = "dosen"
	ResClass          Resource = "kelas"
	ResStudent        Resource = "mahasiswa"
	ResStudentSelf    Resource = "mahasiswa_me"
	ResComplaint      Resource = "aduan"
	ResAnnouncement   Resource = "pemberitahuan"
	ResAnnProgram     Resource = "pemberitahuan_prodi"
	ResAnnDepartment  Resource = "pemberitahuan_jurusan"
	ResScientificWork Resource = "karya_ilmiah"
	ResSchedule       Resource = "jadwal"
	ResCourse         Resource = "makul"
	ResKHS            Resource = "khs"
	ResGrade          Resource = "nilai"
	ResMaterial       Resource = "materi"
	ResTranscript     Resource = "transcript"
	ResBackup         Resource = "backup"
	ResLogLevel       Resource = "log_level"
)

type Action string

const (
	ActRead   Action = "read"
	ActCreate Action = "create"
	ActUpdate Action = "update"
	ActDelete Action = "delete"
)

// anyone includes Anonymous; authed is every signed-in kind.
var (
	anyone = []Kind{KindAnonymous, KindSystemAdmin, KindDepartmentStaff, KindLecturer, KindStudent}
	authed = []Kind{KindSystemAdmin, KindDepartmentStaff, KindLecturer, KindStudent}
	upt    = []Kind{KindSystemAdmin}
	staff  = []Kind{KindSystemAdmin, KindDepartmentStaff}
	campus = []Kind{KindSystemAdmin, KindDepartmentStaff, KindLecturer, KindStudent}
)

func kinds(k ...Kind) []Kind { return k }

var matrix = map[Resource]map[Action][]Kind{
	ResReference: {ActRead: anyone, ActCreate: upt, ActUpdate: upt, ActDelete: upt},
	ResProgram:   {ActRead: anyone, ActCreate: upt, ActUpdate: staff, ActDelete: upt},
	ResStaff:     {ActRead: staff, ActCreate: upt, ActUpdate: staff, ActDelete: upt},
	ResLecturer:  {ActRead: authed, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResClass:     {ActRead: anyone, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResStudent: {
		ActRead:   staff,
		ActCreate: staff,
		ActUpdate: kinds(KindSystemAdmin, KindDepartmentStaff, KindStudent),
		ActDelete: staff,
	},
	ResStudentSelf: {ActRead: kinds(KindStudent), ActUpdate: kinds(KindStudent)},
	ResComplaint: {
		ActRead:   kinds(KindSystemAdmin, KindStudent),
		ActCreate: kinds(KindStudent),
		ActUpdate: upt,
		ActDelete: kinds(KindSystemAdmin, KindStudent),
	},
	ResAnnouncement:  {ActRead: anyone, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResAnnProgram:    {ActRead: upt, ActCreate: staff, ActDelete: upt},
	ResAnnDepartment: {ActRead: upt, ActCreate: upt, ActDelete: upt},
	ResScientificWork: {
		ActRead:   anyone,
		ActCreate: kinds(KindSystemAdmin, KindDepartmentStaff, KindStudent),
		ActUpdate: kinds(KindSystemAdmin, KindDepartmentStaff, KindStudent),
		ActDelete: staff,
	},
	ResSchedule: {ActRead: campus, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResCourse:   {ActRead: campus, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResKHS:      {ActRead: campus, ActCreate: staff, ActUpdate: staff, ActDelete: staff},
	ResGrade: {
		ActRead:   campus,
		ActCreate: kinds(KindSystemAdmin, KindDepartmentStaff, KindLecturer),
		ActUpdate: kinds(KindSystemAdmin, KindDepartmentStaff, KindLecturer),
		ActDelete: staff,
	},
	ResMaterial: {
		ActRead:   authed,
		ActCreate: kinds(KindSystemAdmin, KindDepartmentStaff, KindLecturer),
		ActUpdate: kinds(KindSystemAdmin, KindDepartmentStaff, KindLecturer),
		ActDelete: kinds(KindSystemAdmin, KindDepartmentStaff, KindLecturer),
	},
	ResTranscript: {ActRead: campus},
	ResBackup:     {ActCreate: upt},
	ResLogLevel:   {ActRead: upt, ActUpdate: upt},
}

// Can reports whether the role kind may perform act on res at all.
// Row scope is checked separately against Mutable.
func Can(r Role, res Resource, act Action) bool {
	k := KindAnonymous
	if r != nil {
		k = r.Kind()
	}
	for _, allowed := range matrix[res][act] {
		if allowed == k {
			return true
		}
	}
	return false
}

// RequiresAuth reports whether an anonymous caller must be told to authenticate (401)
// instead of being denied (403).
func RequiresAuth(res Resource, act Action) bool {
	for _, k := range matrix[res][act] {
		if k == KindAnonymous {
			return false
		}
	}
	return true
}
