package services

// Product-level tuning knobs for competency extraction and deduplication.
// These are fixed constants, not negotiated per request.
const (
  // MinSimilarity is the cosine-similarity floor below which an existing
  // competency is not worth surfacing as a possible duplicate.
  MinSimilarity = 0.55

  // MaxSimilarOptions caps how many near-duplicates are attached to a
  // candidate.
  MaxSimilarOptions = 5

  // MinExtractedCandidates and MaxExtractedCandidates bound the number of
  // competencies the model may propose for one source text.
  MinExtractedCandidates = 5
  MaxExtractedCandidates = 20

  // MinExtractionContentLength guards against extraction requests whose
  // source text is too short to yield anything useful.
  MinExtractionContentLength = 30
)
