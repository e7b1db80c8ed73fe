package eval

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Case is one golden question with its reference answer.
type Case struct {
	Input          string `yaml:"input" json:"input" validate:"required"`
	ExpectedOutput string `yaml:"expected_output" json:"expected_output" validate:"required"`
}

type Dataset struct {
	Cases []Case `yaml:"cases" validate:"required,min=1,dive"`
}

// LoadDataset reads a YAML golden dataset.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validator.New().Struct(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return &ds, nil
}

// DefaultDataset covers the introductory machine learning lecture notes the
// sample index was built from.
func DefaultDataset() *Dataset {
	return &Dataset{Cases: []Case{
		{
			Input:          "What is machine learning according to the document?",
			ExpectedOutput: "Machine learning is programming computers to optimize a performance criterion using example data or past experience. It is the field of study that gives computers the ability to learn without being explicitly programmed.",
		},
		{
			Input:          "Explain the concept of abstraction in the learning process.",
			ExpectedOutput: "Abstraction is the process of extracting knowledge about stored data by creating general concepts about the data as a whole. This involves applying known models and creating new ones, with fitting a model to a dataset being known as training.",
		},
		{
			Input:          "How is evaluation defined in the learning process?",
			ExpectedOutput: "Evaluation is the process of providing feedback to the user to measure the usefulness of the learned knowledge, which is then used to improve the overall learning process.",
		},
		{
			Input:          "What are the three main categories of learning models discussed in the document?",
			ExpectedOutput: "The three main categories of learning models are Logical models, Geometric models, and Probabilistic models.",
		},
		{
			Input:          "How do Geometric models define similarity?",
			ExpectedOutput: "Geometric models define similarity by considering the geometry of the instance space, where features can be described as points in a multi-dimensional space. Similarity can be imposed using geometric concepts like lines or planes to segment the space (Linear models) or using the geometric notion of distance (Distance-based models).",
		},
		{
			Input:          "Explain Linear models.",
			ExpectedOutput: "Linear models are a type of Geometric model where the function is represented as a linear combination of its inputs. They are parametric models with a fixed form and a small number of numeric parameters to be learned from data, unlike tree or rule models where the structure is not fixed. Linear models are stable and less likely to overfit but more likely to underfit.",
		},
	}}
}
