package embedding

// TaskType is the enumerated embedding intent passed to the provider,
// per spec §4.C ("Task types are enumerated ... e.g. DOCUMENT_RETRIEVAL,
// CODE_RETRIEVAL_QUERY, CLASSIFICATION"), adapted from the teacher's
// GenAI task_selector.go string constants.
type TaskType string

const (
	TaskDocumentRetrieval TaskType = "DOCUMENT_RETRIEVAL"
	TaskRetrievalQuery    TaskType = "RETRIEVAL_QUERY"
	TaskCodeRetrievalDoc  TaskType = "CODE_RETRIEVAL_DOCUMENT"
	TaskCodeRetrievalQry  TaskType = "CODE_RETRIEVAL_QUERY"
	TaskFactVerification  TaskType = "FACT_VERIFICATION"
	TaskQuestionAnswering TaskType = "QUESTION_ANSWERING"
	TaskClassification    TaskType = "CLASSIFICATION"
	TaskClustering        TaskType = "CLUSTERING"
	TaskSemanticSimilarity TaskType = "SEMANTIC_SIMILARITY"
)

// ForChunkIndex and ForChunkQuery select the task type used when storing
// vs. querying code chunks; the code store's two call sites (indexer,
// retrieval) use these rather than naming the constant directly so the
// mapping lives in one place.
func ForChunkIndex() TaskType { return TaskCodeRetrievalDoc }
func ForChunkQuery() TaskType { return TaskCodeRetrievalQry }

// ForFactIndex and ForFactQuery do the same for memory facts.
func ForFactIndex() TaskType { return TaskDocumentRetrieval }
func ForFactQuery() TaskType { return TaskRetrievalQuery }
