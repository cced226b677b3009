package cache

// Cache key space. The invalidation contract in the lending core
// depends on these exact strings; they are built here, in one place,
// so read and invalidation paths can never drift apart.
//
//	books                     all books
//	book:{id}                 single book
//	students                  all students
//	student:{id}              single student
//	student:{id}:books        books borrowed by a student
//	teachers                  all teachers
//	teacher:{id}:students     students supervised by a teacher

// KeyBooks is the key for the full book collection.
func KeyBooks() string { return "books" }

// KeyBook is the key for a single book.
func KeyBook(id string) string { return "book:" + id }

// KeyStudents is the key for the full student collection.
func KeyStudents() string { return "students" }

// KeyStudent is the key for a single student.
func KeyStudent(id string) string { return "student:" + id }

// KeyStudentBooks is the key for a student's borrowed-books projection.
func KeyStudentBooks(id string) string { return "student:" + id + ":books" }

// KeyTeachers is the key for the full teacher collection.
func KeyTeachers() string { return "teachers" }

// KeyTeacherStudents is the key for a teacher's supervised-students
// projection.
func KeyTeacherStudents(id string) string { return "teacher:" + id + ":students" }
