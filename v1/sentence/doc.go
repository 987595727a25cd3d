// Package sentence computes sentence embeddings and semantic similarity
// scores with a locally stored pre-trained model.
//
// # Overview
//
// Client is the single entrypoint. It resolves the model directory, loads
// the pipeline once and then answers three kinds of requests:
//
//	client, err := sentence.NewClient(ctx, nil,
//	    sentence.WithConfig(sentence.WithModelPath("~/models/gte")),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	res, err := client.Similarity(ctx, "吃完海鲜可以喝牛奶吗?", []string{
//	    "不可以，早晨喝牛奶不科学",
//	    "吃了海鲜后是不能再喝牛奶的",
//	})
//	// res.Scores has one score per compared sentence, in order.
//
//	emb, err := client.Encode(ctx, []string{"hello", "world"})
//	// emb.Shape() == []int{2, 768}
//
//	batch, err := client.BatchSimilarity(ctx, []string{"a", "b"}, []string{"x", "y"})
//	// one BatchResult per source, each computed with its own pipeline call
//
// Inputs are declared as any: a string is a one-element list, and any slice
// whose elements are all strings is accepted. Empty lists and non-string
// elements are rejected before the pipeline runs, with errors matching
// ErrEmptyInput and ErrInputType.
//
// # Backends
//
// The pipeline itself is external. Two implementations ship with the
// package and are chosen by Config.Backend:
//
//   - BackendProcess starts a Python child process running the embedded
//     runner script and exchanges newline-delimited JSON with it.
//   - BackendHTTP posts each payload to <endpoint>/pipeline/sentence-embedding.
//
// Tests and callers with their own runtime can inject any Pipeline through
// WithPipelineFactory.
//
// # Quiet Mode
//
// With Config.Quiet set (the default) the Client configures the quiet
// package once, discards the runner's stderr, and runs model loading and
// every invocation with standard output and standard error suppressed. The
// logger passed with WithLogger keeps its configured level.
// Pipeline calls are serialized across the whole process.
//
// # Configuration
//
// LoadConfig reads a YAML file and SENTENCE_* environment variables:
//
//	SENTENCE_MODEL_PATH=~/models/gte
//	SENTENCE_DEVICE=cpu
//	SENTENCE_SEQUENCE_LENGTH=512
//	SENTENCE_QUIET=true
//	SENTENCE_BACKEND=process       # or http
//	SENTENCE_PYTHON=python3
//	SENTENCE_ENDPOINT=http://localhost:8000
//	SENTENCE_HTTP_TIMEOUT_SECONDS=30
//
// # FX Module Integration
//
//	app := fx.New(
//	    fx.Supply(cfg), // sentence.Config
//	    logger.FXModule,
//	    sentence.FXModule,
//	)
package sentence
