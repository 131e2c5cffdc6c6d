package metadata

/** @brief Runs the work of a job. The result is handed to OnComplete. */
type JobStart func(params interface{}) (interface{}, error)

/** @brief Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** @brief Definition for failure of a job. */
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Invoked on a worker when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked on the worker when the job successfully completes. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked on the worker when the job fails. Optional. */
	OnFailure JobOnFailure
	/** @brief Data passed to OnStart. */
	InputParams interface{}
}
