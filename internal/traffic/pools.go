package traffic

// Sample content pools. Selection rotates through each pool in order so
// the traffic varies between cycles while staying reproducible.

var chatPrompts = []string{
	"Hello! How are you?",
	"What can you help me with today?",
	"Tell me a fun fact about computers.",
	"What is your purpose?",
	"Can you help me write some code?",
}

var completionPrompts = []string{
	"What is machine learning?",
	"Explain the concept of neural networks in simple terms.",
	"Write a haiku about artificial intelligence.",
	"What are the benefits of cloud computing?",
	"Describe the difference between supervised and unsupervised learning.",
}

var embeddingTexts = []string{
	"The quick brown fox jumps over the lazy dog",
	"Machine learning is transforming industries",
	"Cloud computing provides scalable infrastructure",
	"Artificial intelligence is advancing rapidly",
	"Data science combines statistics and programming",
}

// RerankSample pairs a query with candidate documents to score against it.
type RerankSample struct {
	Query     string
	Documents []string
}

var rerankSamples = []RerankSample{
	{
		Query: "What is machine learning?",
		Documents: []string{
			"Machine learning is a subset of artificial intelligence.",
			"The weather today is sunny and warm.",
			"Neural networks are inspired by biological neurons.",
			"Pizza is a popular Italian food.",
		},
	},
	{
		Query: "benefits of cloud computing",
		Documents: []string{
			"Cloud computing offers scalability and flexibility.",
			"Cats are popular pets around the world.",
			"Cost savings are a major advantage of cloud services.",
			"Mountains are formed by tectonic activity.",
		},
	},
	{
		Query: "how do databases index data",
		Documents: []string{
			"B-tree indexes keep lookups logarithmic in table size.",
			"The opera opens its season in September.",
			"Hash indexes trade range scans for constant-time lookups.",
			"Bicycles outnumber cars in some cities.",
		},
	},
}

var visionPrompts = []string{
	"Describe this image in detail.",
	"What do you see in this picture?",
	"What is the main subject of this image?",
}

// placeholderImage is a 1x1 red-pixel PNG, the smallest payload a
// vision-language endpoint will accept as an image.
const placeholderImage = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8DwHwAFBQIAX8jx0gAAAABJRU5ErkJggg=="
