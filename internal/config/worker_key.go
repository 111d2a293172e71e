package config

type WorkerKeyStruct struct {
	RecalculateStudentsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RecalculateStudentsQueue: "recalculate_students_queue",
}
