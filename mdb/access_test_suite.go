package mdb

// Would prefer to name this file ending in _test.go
//  so that it won't be included in generated code,
//  but then it can't be referenced from other packages for some reason,
//  so it couldn't be used (as designed) in tests in other packages.

import (
	"github.com/stretchr/testify/suite"
)

const AccessTestDBname = "db-test"

type AccessTestSuite struct {
	suite.Suite
	access *Access
}

func (suite *AccessTestSuite) Access() *Access {
	return suite.access
}

func (suite *AccessTestSuite) SetupSuite() {
	suite.SetupSuiteConfig(nil)
}

func (suite *AccessTestSuite) SetupSuiteConfig(config *Config) {
	var err error
	suite.access, err = Connect(config)
	suite.Require().NoError(err, "connect to mongo")
	suite.access.Info("Suite setup")
}

// TearDownSuite drops every database provisioned during the suite.
func (suite *AccessTestSuite) TearDownSuite() {
	suite.access.Info("Suite teardown")
	for _, name := range suite.access.Databases() {
		database, err := suite.access.Database(name)
		if suite.NoError(err) {
			suite.NoError(database.Drop(), "drop test database "+name)
		}
	}
	suite.NoError(suite.access.Disconnect(), "disconnect from mongo")
}

// ConnectCollection provisions the specified collection in the test database
// and adds any provided indexes in a SetupSuite() or SetupTest()
// with test checks so that any errors blow up the test.
func (suite *AccessTestSuite) ConnectCollection(
	collectionName string, indexDescriptions ...*IndexDescription) *Collection {
	collection, err := suite.access.Collection(collectionName, AccessTestDBname)
	suite.Require().NoError(err)
	suite.NotNil(collection)
	suite.Require().NoError(collection.DeleteAll())
	for _, indexDescription := range indexDescriptions {
		suite.Require().NoError(suite.access.Index(collection, indexDescription))
	}
	return collection
}
